package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"saasadmin/internal/cache"
	"saasadmin/internal/config"
	"saasadmin/internal/model"
	"saasadmin/internal/repository"
	"saasadmin/internal/service"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.MongoURI).
		SetRegistry(repository.NewRegistry()))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDatabase)
	repository.EnsureIndexes(ctx, db)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	forms := service.NewFormService(
		repository.NewFormRepo(db),
		repository.NewCounterRepo(db),
		cache.NewFormCache(rdb, cfg.FormCacheTTL),
	)

	form, err := seedForm(ctx, forms, cfg.AdminOrganizationID)
	if err != nil {
		log.Fatalf("Failed to seed form: %v", err)
	}

	fmt.Printf("Successfully created form '%s' (id %d) for organization %d\n", form.Title, form.ID, form.OrganizationID)
	fmt.Printf("Public key: %s\n", form.PublicKey)
}

func seedForm(ctx context.Context, forms *service.FormService, orgID int64) (*model.Form, error) {
	form, err := forms.CreateForm(ctx, orgID, model.FormRequest{
		Title:        "Smartphone Launch Feedback",
		Description:  "Understand user perception, satisfaction, and improvement areas for the new device.",
		Instructions: "Answer every required question. The form takes about three minutes.",
	})
	if err != nil {
		return nil, err
	}

	experience, err := forms.AddPage(ctx, orgID, form.ID, model.PageRequest{Title: "Your experience"})
	if err != nil {
		return nil, err
	}
	feedback, err := forms.AddPage(ctx, orgID, form.ID, model.PageRequest{Title: "Feedback"})
	if err != nil {
		return nil, err
	}

	owner, err := forms.AddQuestion(ctx, orgID, form.ID, experience.ID, model.QuestionRequest{
		Text:           "Did you buy this smartphone?",
		QuestionTypeID: model.QuestionTypeSingleChoice,
		IsRequired:     true,
		Options: []model.OptionRequest{
			{Text: "Yes", Score: score(10)},
			{Text: "No", Score: score(0)},
		},
	})
	if err != nil {
		return nil, err
	}

	modelQ, err := forms.AddQuestion(ctx, orgID, form.ID, experience.ID, model.QuestionRequest{
		Text:           "Which model did you purchase?",
		QuestionTypeID: model.QuestionTypeDropdown,
		Options: []model.OptionRequest{
			{Text: "Standard Model", Score: score(5)},
			{Text: "Pro / Plus Model", Score: score(10)},
			{Text: "Ultra / Max Model", Score: score(15)},
		},
	})
	if err != nil {
		return nil, err
	}

	satisfaction, err := forms.AddQuestion(ctx, orgID, form.ID, experience.ID, model.QuestionRequest{
		Text:           "How satisfied are you with the device overall?",
		QuestionTypeID: model.QuestionTypeSlider,
		IsRequired:     true,
		Slider: &model.SliderRequest{
			MinValue:  decimal.NewFromInt(0),
			MaxValue:  decimal.NewFromInt(10),
			StepValue: decimal.NewFromInt(1),
			MinLabel:  "Not at all",
			MaxLabel:  "Completely",
		},
	})
	if err != nil {
		return nil, err
	}

	ratings, err := forms.AddQuestion(ctx, orgID, form.ID, experience.ID, model.QuestionRequest{
		Text:           "Rate each feature",
		QuestionTypeID: model.QuestionTypeMatrix,
		MatrixRows: []model.MatrixRowRequest{
			{Text: "Display"},
			{Text: "Battery"},
			{Text: "Camera"},
		},
		MatrixColumns: []model.MatrixColumnRequest{
			{Text: "Poor", Score: decimal.NewFromInt(1)},
			{Text: "Good", Score: decimal.NewFromInt(3)},
			{Text: "Excellent", Score: decimal.NewFromInt(5)},
		},
	})
	if err != nil {
		return nil, err
	}

	_, err = forms.AddQuestion(ctx, orgID, form.ID, feedback.ID, model.QuestionRequest{
		Text:           "What is one thing you would improve?",
		QuestionTypeID: model.QuestionTypeLongText,
		IsRequired:     true,
	})
	if err != nil {
		return nil, err
	}

	battery, err := forms.AddQuestion(ctx, orgID, form.ID, feedback.ID, model.QuestionRequest{
		Text:           "What went wrong with the battery?",
		QuestionTypeID: model.QuestionTypeShortText,
	})
	if err != nil {
		return nil, err
	}

	rules := []model.RuleRequest{
		// Non-owners are not asked about models or features
		{
			SourceQuestionID: owner.ID,
			TriggerOptionID:  &owner.Options[1].ID,
			Condition:        model.ConditionIsSelected,
			ActionType:       model.ActionHideQuestion,
			TargetQuestionID: &modelQ.ID,
		},
		{
			SourceQuestionID: owner.ID,
			TriggerOptionID:  &owner.Options[0].ID,
			Condition:        model.ConditionIsNotSelected,
			ActionType:       model.ActionHideQuestion,
			TargetQuestionID: &ratings.ID,
		},
		// Very satisfied respondents skip straight to the end
		{
			SourceQuestionID: satisfaction.ID,
			Condition:        model.ConditionGreaterThan,
			MinValue:         score(9),
			ActionType:       model.ActionTerminateForm,
		},
		{
			SourceQuestionID: ratings.ID,
			Condition:        model.ConditionIsSelected,
			MatrixRowID:      &ratings.MatrixRows[1].ID,
			MatrixColumnID:   &ratings.MatrixColumns[0].ID,
			ActionType:       model.ActionShowQuestion,
			TargetQuestionID: &battery.ID,
		},
	}
	for _, req := range rules {
		if _, err := forms.AddRule(ctx, orgID, form.ID, req); err != nil {
			return nil, err
		}
	}

	return forms.Publish(ctx, orgID, form.ID)
}

func score(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

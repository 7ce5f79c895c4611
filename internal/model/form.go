package model

import "time"

// Form is a questionnaire definition owned by an organization (tenant).
// It is stored as one document holding its pages, questions and rules.
type Form struct {
	ID                int64      `json:"id" bson:"_id"`
	OrganizationID    int64      `json:"organizationId" bson:"organizationId"`
	Title             string     `json:"title" bson:"title"`
	Description       string     `json:"description" bson:"description"`
	Instructions      string     `json:"instructions" bson:"instructions"`
	IsPublished       bool       `json:"isPublished" bson:"isPublished"`
	PublishedAt       *time.Time `json:"publishedAt,omitempty" bson:"publishedAt,omitempty"`
	AllowResubmission bool       `json:"allowResubmission" bson:"allowResubmission"`
	PublicKey         string     `json:"publicKey,omitempty" bson:"publicKey,omitempty"`
	PublicURL         string     `json:"publicUrl,omitempty" bson:"publicUrl,omitempty"`
	Pages             []Page     `json:"pages" bson:"pages"`
	Rules             []Rule     `json:"rules" bson:"rules"`
	SoftDelete        `bson:",inline"`
	CreatedAt         time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt" bson:"updatedAt"`
	Version           int64     `json:"version" bson:"version"` // bumped on every write
}

// Page groups questions; PageOrder is unique within the form.
type Page struct {
	ID          int64      `json:"id" bson:"id"`
	FormID      int64      `json:"formId" bson:"formId"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	PageOrder   int        `json:"pageOrder" bson:"pageOrder"`
	Questions   []Question `json:"questions" bson:"questions"`
	SoftDelete  `bson:",inline"`
}

// FindPage returns a pointer into f.Pages, deleted pages included.
func (f *Form) FindPage(id int64) *Page {
	for i := range f.Pages {
		if f.Pages[i].ID == id {
			return &f.Pages[i]
		}
	}
	return nil
}

// FindQuestion returns a pointer to the question and its owning page.
func (f *Form) FindQuestion(id int64) (*Question, *Page) {
	for i := range f.Pages {
		p := &f.Pages[i]
		for j := range p.Questions {
			if p.Questions[j].ID == id {
				return &p.Questions[j], p
			}
		}
	}
	return nil, nil
}

// FindRule returns a pointer into f.Rules.
func (f *Form) FindRule(id int64) *Rule {
	for i := range f.Rules {
		if f.Rules[i].ID == id {
			return &f.Rules[i]
		}
	}
	return nil
}

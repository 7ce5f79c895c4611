package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// ScoreBoard is a Redis ZSET of submission totals per form. Mongo stays the
// source of truth; the board is rebuilt after recalculation.
type ScoreBoard interface {
	UpdateScore(ctx context.Context, formID, submissionID int64, score decimal.Decimal) error
	Remove(ctx context.Context, formID, submissionID int64) error
	GetTop(ctx context.Context, formID int64, limit int) ([]ScoreEntry, error)
	GetRank(ctx context.Context, formID, submissionID int64) (int64, error)
	Replace(ctx context.Context, formID int64, entries []ScoreEntry) error
}

// ScoreEntry is one row of a form's score board
type ScoreEntry struct {
	SubmissionID    int64           `json:"submissionId"`
	RespondentEmail string          `json:"respondentEmail,omitempty"`
	RespondentName  string          `json:"respondentName,omitempty"`
	Score           decimal.Decimal `json:"score"`
	Rank            int             `json:"rank"`
}

type scoreBoard struct {
	client *redis.Client
}

// NewScoreBoard creates a new score board cache
func NewScoreBoard(client *redis.Client) ScoreBoard {
	return &scoreBoard{
		client: client,
	}
}

func (c *scoreBoard) key(formID int64) string {
	return fmt.Sprintf("form:%d:scores", formID)
}

func (c *scoreBoard) UpdateScore(ctx context.Context, formID, submissionID int64, score decimal.Decimal) error {
	return c.client.ZAdd(ctx, c.key(formID), redis.Z{
		Score:  score.InexactFloat64(),
		Member: strconv.FormatInt(submissionID, 10),
	}).Err()
}

func (c *scoreBoard) Remove(ctx context.Context, formID, submissionID int64) error {
	return c.client.ZRem(ctx, c.key(formID), strconv.FormatInt(submissionID, 10)).Err()
}

func (c *scoreBoard) GetTop(ctx context.Context, formID int64, limit int) ([]ScoreEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(formID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]ScoreEntry, 0, len(results))
	for i, z := range results {
		member, _ := z.Member.(string)
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, ScoreEntry{
			SubmissionID: id,
			Score:        decimal.NewFromFloat(z.Score),
			Rank:         i + 1,
		})
	}
	return entries, nil
}

func (c *scoreBoard) GetRank(ctx context.Context, formID, submissionID int64) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, c.key(formID), strconv.FormatInt(submissionID, 10)).Result()
	if err == redis.Nil {
		return -1, nil
	}
	return rank + 1, err // 1-indexed
}

// Replace swaps the whole board in one transaction
func (c *scoreBoard) Replace(ctx context.Context, formID int64, entries []ScoreEntry) error {
	key := c.key(formID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(entries) == 0 {
			return nil
		}
		members := make([]redis.Z, len(entries))
		for i, e := range entries {
			members[i] = redis.Z{Score: e.Score.InexactFloat64(), Member: strconv.FormatInt(e.SubmissionID, 10)}
		}
		pipe.ZAdd(ctx, key, members...)
		return nil
	})
	return err
}

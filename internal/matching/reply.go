package matching

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/normalize"
)

// Reply scoring weights.
const (
	scoreNameMatch = 10
	scoreVolume    = 5
	scoreClosest   = 1
)

// ReplyMatcher ranks REPLY candidates for every START and assigns each REPLY
// to at most one START.
type ReplyMatcher struct {
	window  time.Duration
	workers int
}

// NewReplyMatcher creates a reply matcher. A non-positive window falls back to
// DefaultReplyWindow and non-positive workers to GOMAXPROCS.
func NewReplyMatcher(window time.Duration, workers int) *ReplyMatcher {
	if window <= 0 {
		window = DefaultReplyWindow
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &ReplyMatcher{window: window, workers: workers}
}

// Input is the read-only view of the table the matchers work on.
type Input struct {
	Messages        []model.Message
	Classifications []model.Classification
	Entities        []model.Entities
	Windows         []model.Window
}

func (in Input) validate() error {
	n := len(in.Messages)
	if len(in.Classifications) != n || len(in.Entities) != n || len(in.Windows) != n {
		return fmt.Errorf("column length mismatch: messages=%d classifications=%d entities=%d windows=%d",
			n, len(in.Classifications), len(in.Entities), len(in.Windows))
	}
	return nil
}

type candidate struct {
	result model.MatchResult
	start  int
}

// Rank returns the scored REPLY candidates for the START at row s, best first.
// Candidates scoring zero are dropped.
func (m *ReplyMatcher) Rank(in Input, s int) []model.MatchResult {
	w := in.Windows[s]
	if !w.Valid() {
		return nil
	}
	start := in.Messages[s]
	date := start.DateKey()

	var (
		ranked      []model.MatchResult
		closestName time.Duration = -1
	)
	for j := w.Start + 1; j < w.End; j++ {
		if in.Classifications[j].Intent != model.IntentReply {
			continue
		}
		reply := in.Messages[j]
		if reply.DateKey() != date || reply.TraderName == start.TraderName {
			continue
		}
		g := gap(in.Messages, s, j)
		if g < 0 || g > m.window {
			continue
		}

		criteria := model.MatchCriteria{
			TimeGap:   g,
			NameMatch: replyNamesTrader(in.Classifications[j], in.Entities[j], start.TraderName),
			HasVolume: in.Entities[j].Volume() != nil,
		}
		score := 0
		if criteria.NameMatch {
			score += scoreNameMatch
			if closestName < 0 || g <= closestName {
				closestName = g
				score += scoreClosest
			}
		}
		if criteria.HasVolume {
			score += scoreVolume
		}
		if score == 0 {
			continue
		}
		ranked = append(ranked, model.MatchResult{Index: j, Score: score, Criteria: criteria})
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return better(ranked[a], ranked[b])
	})
	return ranked
}

// Match ranks candidates for all STARTs concurrently, then assigns replies
// greedily by score, gap and START order.
func (m *ReplyMatcher) Match(ctx context.Context, in Input) (Assignment, error) {
	if err := in.validate(); err != nil {
		return Assignment{}, err
	}

	var starts []int
	for i, w := range in.Windows {
		if w.Valid() {
			starts = append(starts, i)
		}
	}

	ranked := make([][]model.MatchResult, len(starts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for k, s := range starts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ranked[k] = m.Rank(in, s)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Assignment{}, fmt.Errorf("failed to rank reply candidates: %w", err)
	}

	var pairs []candidate
	for k, s := range starts {
		for _, r := range ranked[k] {
			pairs = append(pairs, candidate{start: s, result: r})
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		pa, pb := pairs[a], pairs[b]
		if pa.result.Score != pb.result.Score {
			return pa.result.Score > pb.result.Score
		}
		if pa.result.Criteria.TimeGap != pb.result.Criteria.TimeGap {
			return pa.result.Criteria.TimeGap < pb.result.Criteria.TimeGap
		}
		if pa.start != pb.start {
			return pa.start < pb.start
		}
		return pa.result.Index < pb.result.Index
	})

	out := newAssignment(len(in.Messages))
	for _, p := range pairs {
		if out.Matched(p.start) || out.Owners[p.result.Index] != model.NoIndex {
			continue
		}
		out.Matches[p.start] = p.result
		out.Owners[p.result.Index] = p.start
	}
	return out, nil
}

// better orders candidates of a single START: higher score, then smaller gap,
// then earlier row.
func better(a, b model.MatchResult) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Criteria.TimeGap != b.Criteria.TimeGap {
		return a.Criteria.TimeGap < b.Criteria.TimeGap
	}
	return a.Index < b.Index
}

func replyNamesTrader(cls model.Classification, ent model.Entities, trader string) bool {
	if ent.Reply != nil && ent.Reply.TargetTrader != "" && normalize.Match(ent.Reply.TargetTrader, trader) {
		return true
	}
	return cls.MentionedName != "" && normalize.Match(cls.MentionedName, trader)
}

package merit

import (
	"context"
	"fmt"

	"github.com/nonsonwune/nestrank/config"
	"github.com/nonsonwune/nestrank/models"
)

// Result is the output of one ranking run
type Result struct {
	Candidates []models.Candidate
	SMAS       models.SMASTable
}

// Pipeline runs the stages in order: rescale, score, SMAS, qualify, rank.
type Pipeline struct {
	policy   config.Policy
	rescaler *Rescaler
}

// NewPipeline returns a pipeline bound to policy.
func NewPipeline(policy config.Policy) *Pipeline {
	return &Pipeline{
		policy:   policy,
		rescaler: NewRescaler(policy),
	}
}

// Run computes the full ranking for cands. The input slice is not modified.
func (p *Pipeline) Run(ctx context.Context, cands []models.Candidate) (*Result, error) {
	scored := ComputeScores(p.rescaler.Apply(cands), p.policy)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ranking aborted after scoring: %w", err)
	}
	smas := CalculateSMAS(scored, p.policy)
	qualified := Qualify(scored, smas, p.policy)

	ranked, err := AssignAllRanks(ctx, qualified, p.policy)
	if err != nil {
		return nil, fmt.Errorf("ranking aborted: %w", err)
	}
	return &Result{Candidates: ranked, SMAS: smas}, nil
}

package merit

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nonsonwune/nestrank/config"
	"github.com/nonsonwune/nestrank/models"
)

// Masks holds the eligibility mask of every rank list, indexed like the table.
type Masks struct {
	Base     []bool
	General  []bool
	Category map[string][]bool
	EWS      []bool
	PWD      []bool
	Region   []bool
}

// BuildMasks evaluates the eligibility rules of each rank list. Every list
// requires base qualification (at least MinQualified subjects cleared).
func BuildMasks(cands []models.Candidate, policy config.Policy) Masks {
	n := len(cands)
	m := Masks{
		Base:     make([]bool, n),
		General:  make([]bool, n),
		Category: make(map[string][]bool, len(policy.ReservedOrder)),
		EWS:      make([]bool, n),
		PWD:      make([]bool, n),
		Region:   make([]bool, n),
	}
	for _, code := range policy.ReservedOrder {
		m.Category[code] = make([]bool, n)
	}

	cut := policy.Cutoffs
	for i, c := range cands {
		base := c.QualifiedSubjects >= policy.MinQualified
		if !base {
			continue
		}
		m.Base[i] = true

		reserved := false
		if policy.IsReserved(c.Category) && c.Percentile >= cut.Category[c.Category] {
			m.Category[c.Category][i] = true
			reserved = true
		}
		m.PWD[i] = c.IsPWD() && c.Percentile >= cut.PWD
		// EWS is matched anywhere in the category text, so composite codes
		// such as "GEN-EWS" qualify.
		m.EWS[i] = strings.Contains(strings.ToUpper(c.Category), models.CategoryEWS) && c.Percentile >= cut.EWS
		m.General[i] = c.Percentile >= cut.General || reserved || m.PWD[i]
		m.Region[i] = c.IsJK() && m.General[i]
	}
	return m
}

type rankList struct {
	field  models.RankField
	prefix string
	mask   []bool
}

func (m Masks) lists(policy config.Policy) []rankList {
	lists := []rankList{{field: models.GeneralRank, mask: m.General}}
	for _, code := range policy.ReservedOrder {
		lists = append(lists, rankList{field: models.CategoryRank, prefix: code, mask: m.Category[code]})
	}
	return append(lists,
		rankList{field: models.EWSRank, prefix: models.CategoryEWS, mask: m.EWS},
		rankList{field: models.PWDRank, mask: m.PWD},
		rankList{field: models.RegionRank, mask: m.Region},
	)
}

// AssignAllRanks builds the masks and fills every rank list. The lists are
// ranked concurrently against the read-only input and merged in list order;
// the category lists share one field but never the same rows.
func AssignAllRanks(ctx context.Context, cands []models.Candidate, policy config.Policy) ([]models.Candidate, error) {
	lists := BuildMasks(cands, policy).lists(policy)
	positions := make([]map[int]int, len(lists))

	g, gctx := errgroup.WithContext(ctx)
	for i, l := range lists {
		i, l := i, l
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			positions[i] = rankPositions(cands, l.mask)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := models.CloneAll(cands)
	for i := range out {
		out[i].Ranks = models.Ranks{}
	}
	for i, l := range lists {
		applyPositions(out, positions[i], l.field, l.prefix)
	}
	return out, nil
}

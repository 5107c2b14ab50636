package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/cup-engine/ledger"
	"github.com/Dosada05/cup-engine/models"
	"github.com/Dosada05/cup-engine/repositories"
	"github.com/google/uuid"
)

// prizeNamespace scopes award keys; keys are uuid.NewSHA1 over
// "edition:club:total", so settling the same state twice yields the same key.
var prizeNamespace = uuid.MustParse("6f1d3c3e-58a4-4b8e-9d55-3a1c8f0e2b71")

func PrizeAwardID(editionID, clubID int, totalAfter int64) uuid.UUID {
	return uuid.NewSHA1(prizeNamespace, []byte(fmt.Sprintf("%d:%d:%d", editionID, clubID, totalAfter)))
}

type SettlementReport struct {
	EditionID     int                 `json:"edition_id"`
	Awards        []models.PrizeAward `json:"awards"`
	CreditedCount int                 `json:"credited_count"`
	CreditedTotal int64               `json:"credited_total"`
}

// PrizeService pays out prize money. Awards are recorded in the same
// transaction as the participants' new totals, then credited to the ledger
// after commit, keyed by the award ID. An award left pending by a failure
// between crediting and marking is sent again, and the ledger ignores the
// repeated key, so each award reaches the balance once.
type PrizeService struct {
	creditMu   sync.Mutex
	store      repositories.Store
	ledger     ledger.ClubLedger
	calculator *PrizeCalculator
	logger     *slog.Logger
	now        func() time.Time
}

func NewPrizeService(store repositories.Store, clubLedger ledger.ClubLedger, calculator *PrizeCalculator, logger *slog.Logger) *PrizeService {
	if calculator == nil {
		calculator = NewPrizeCalculator()
	}
	return &PrizeService{store: store, ledger: clubLedger, calculator: calculator, logger: logger, now: time.Now}
}

func (s *PrizeService) Settle(ctx context.Context, editionID int) (*SettlementReport, error) {
	report := &SettlementReport{EditionID: editionID, Awards: []models.PrizeAward{}}

	err := s.store.WithinTx(ctx, func(ctx context.Context, repo repositories.CupRepository) error {
		edition, err := repo.GetEditionByID(ctx, editionID)
		if err != nil {
			return fmt.Errorf("failed to load edition %d: %w", editionID, err)
		}
		competition, err := repo.GetCompetitionByID(ctx, edition.CompetitionID)
		if err != nil {
			return fmt.Errorf("failed to load competition %d: %w", edition.CompetitionID, err)
		}
		rounds, err := repo.ListRoundsByEdition(ctx, editionID)
		if err != nil {
			return fmt.Errorf("failed to list rounds of edition %d: %w", editionID, err)
		}
		participants, err := repo.ListParticipantsByEdition(ctx, editionID)
		if err != nil {
			return fmt.Errorf("failed to list participants of edition %d: %w", editionID, err)
		}

		for i := range participants {
			p := &participants[i]
			total := s.calculator.TotalPrizeForParticipant(competition.CupType, rounds, *p)
			delta := total - p.PrizeMoneyEarned
			if delta <= 0 {
				continue
			}

			award := models.PrizeAward{
				ID:            PrizeAwardID(editionID, p.ClubID, total),
				EditionID:     editionID,
				ParticipantID: p.ID,
				ClubID:        p.ClubID,
				Amount:        delta,
				TotalAfter:    total,
			}
			created, err := repo.CreatePrizeAward(ctx, &award)
			if err != nil {
				return fmt.Errorf("failed to record prize for club %d: %w", p.ClubID, err)
			}
			if created {
				report.Awards = append(report.Awards, award)
			}

			p.PrizeMoneyEarned = total
			if err := repo.UpdateParticipant(ctx, p); err != nil {
				return fmt.Errorf("failed to update prize total of club %d: %w", p.ClubID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.creditPending(ctx, editionID, report); err != nil {
		return report, err
	}
	return report, nil
}

// creditPending pushes every uncredited award of the edition to the ledger,
// including awards left over from an earlier failed run.
func (s *PrizeService) creditPending(ctx context.Context, editionID int, report *SettlementReport) error {
	s.creditMu.Lock()
	defer s.creditMu.Unlock()

	pending, err := s.store.ListPrizeAwardsByEdition(ctx, editionID, true)
	if err != nil {
		return fmt.Errorf("failed to list pending prize awards of edition %d: %w", editionID, err)
	}
	for _, award := range pending {
		if err := s.ledger.CreditBalance(ctx, award.ID, award.ClubID, award.Amount); err != nil {
			return fmt.Errorf("failed to credit club %d: %w", award.ClubID, err)
		}
		if err := s.store.MarkPrizeAwardCredited(ctx, award.ID, s.now()); err != nil {
			return fmt.Errorf("failed to mark prize award %s credited: %w", award.ID, err)
		}
		report.CreditedCount++
		report.CreditedTotal += award.Amount
		s.logger.InfoContext(ctx, "prize money credited",
			slog.Int("edition_id", editionID),
			slog.Int("club_id", award.ClubID),
			slog.Int64("amount", award.Amount),
			slog.Int64("total_after", award.TotalAfter))
	}
	return nil
}

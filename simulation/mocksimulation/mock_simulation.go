package mocksimulation

import (
	"context"

	"github.com/Dosada05/cup-engine/simulation"
	"github.com/stretchr/testify/mock"
)

type Simulator struct {
	mock.Mock
}

func (s *Simulator) Simulate(ctx context.Context, home, away simulation.Lineup) (*simulation.Result, error) {
	args := s.Called(ctx, home, away)

	var res *simulation.Result
	if args.Get(0) != nil {
		res = args.Get(0).(*simulation.Result)
	}

	return res, args.Error(1)
}

type Lineups struct {
	mock.Mock
}

func (l *Lineups) StartingLineup(ctx context.Context, club simulation.Club) (simulation.Lineup, error) {
	args := l.Called(ctx, club)
	return args.Get(0).(simulation.Lineup), args.Error(1)
}

package pipelines

import (
	"github.com/linkforge/venuematch/internal/pipeline"
	"github.com/linkforge/venuematch/internal/ports"
)

// RegisterAll builds and registers every concrete pipeline against the
// shared repository port. Called once from cmd/matchengine at startup
// (§4.4 "registry maps topic → pipeline; dispatching is a pure lookup").
func RegisterAll(repo ports.Repository) {
	pipeline.Register(NewCryptoDaily(repo))
	pipeline.Register(NewCryptoIntraday(repo))
	pipeline.Register(NewMacro(repo))
	pipeline.Register(NewRates(repo))
	pipeline.Register(NewElections(repo))
	pipeline.Register(NewGeopolitics(repo))
	pipeline.Register(NewEntertainment(repo))
	pipeline.Register(NewClimate(repo))
	pipeline.Register(NewCommodities(repo))
	pipeline.Register(NewFinance(repo))
	pipeline.Register(NewSports(repo))
}

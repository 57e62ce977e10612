package plugins

import (
	"github.com/kilianp07/autosampler/app/plugins/universalstorage"
	"github.com/kilianp07/autosampler/core/strategy"
)

func init() {
	Register(strategy.Candidate{
		Name: "universalstorage",
		New: func(strategy.Env) (any, error) {
			return universalstorage.Factory{}, nil
		},
	})
}

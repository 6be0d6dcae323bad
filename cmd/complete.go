package cmd

import (
	"flag"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors predicts flag values by flag name, other flags predict nothing.
var flagPredictors = map[string]complete.Predictor{
	"ledger-file": predict.Files("*.xls*"),
	"config":      predict.Files("*.y*ml"),
	"capture":     predict.Files("*.json"),
	"d":           predict.Set{"0d", "-1d", "-1w", "-1m"},
}

// Completion returns the shell completion of the bsync command line.
func Completion(global *flag.FlagSet) *complete.Command {
	cmp := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flags(global),
	}
	for _, c := range Commands() {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		cmp.Sub[c.Name()] = &complete.Command{Flags: flags(fs)}
	}
	return cmp
}

func flags(fs *flag.FlagSet) map[string]complete.Predictor {
	m := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		p, ok := flagPredictors[f.Name]
		if !ok {
			p = predict.Nothing
		}
		m[f.Name] = p
	})
	return m
}

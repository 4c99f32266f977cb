package preprocess

import (
	"log/slog"
	"math/rand/v2"
	"sort"

	"github.com/KaramelBytes/dataviz-cli/internal/dataset"
)

// oversample appends copies of minority-class rows until every class matches
// the majority count. Rows without a target value are left alone.
func oversample(ds *dataset.Dataset, p Params) *dataset.Dataset {
	target := p.target(ds)
	if target == "" {
		slog.Info("target-imbalance skipped: no target column",
			"hint", "pass a target or name the label column like \"target\"")
		return ds
	}
	byClass := map[string][]int{}
	for i, r := range ds.Rows {
		if v := r[target]; !v.IsMissing() {
			k := v.Key()
			byClass[k] = append(byClass[k], i)
		}
	}
	if len(byClass) < 2 {
		return ds
	}
	classes := make([]string, 0, len(byClass))
	majority := 0
	for k, rows := range byClass {
		classes = append(classes, k)
		majority = max(majority, len(rows))
	}
	sort.Strings(classes)

	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))
	for _, k := range classes {
		rows := byClass[k]
		for n := 0; n < majority-len(rows); n++ {
			pick := rows[n%len(rows)]
			if p.Strategy != StrategyCyclic {
				pick = rows[rng.IntN(len(rows))]
			}
			ds.Rows = append(ds.Rows, ds.Rows[pick].Clone())
		}
	}
	return ds
}

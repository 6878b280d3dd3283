// Пакет содержит метрики Prometheus для операций над деревом документа.
//
// Основные возможности:
//   - Счетчик операций форматирования с разбивкой по исходу (attribute, replace,
//     container, noop).
//   - Счетчики замен, разделений блоков и пересборок хранилища атрибутов.
//   - Гистограмма числа проходов оптимизации.
//   - Регистрация всех метрик в произвольном prometheus.Registerer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "redactor"

var (
	FormatOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "block",
		Name:      "format_total",
		Help:      "Block format calls by outcome",
	}, []string{"outcome"})

	Replacements = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "replace_total",
		Help:      "Blot replacements by new blot type",
	}, []string{"blot"})

	Splits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "block",
		Name:      "split_total",
		Help:      "Blocks split to insert structural content",
	})

	AttributeRebuilds = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attribute_rebuild_total",
		Help:      "Attribute stores rebuilt from external mutations",
	})

	MutationRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutation_records_total",
		Help:      "Mutation records reconciled by type",
	}, []string{"type"})

	OptimizePasses = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "optimize_passes",
		Help:      "Optimize passes needed to settle the tree",
		Buckets:   []float64{1, 2, 3, 5, 10, 25, 50, 100},
	})
)

// Outcomes of a block format call.
const (
	OutcomeAttribute = "attribute"
	OutcomeReplace   = "replace"
	OutcomeContainer = "container"
	OutcomeNoop      = "noop"
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		FormatOps,
		Replacements,
		Splits,
		AttributeRebuilds,
		MutationRecords,
		OptimizePasses,
	}
}

// Register регистрирует все метрики пакета. Повторная регистрация тех же
// коллекторов не считается ошибкой.
func Register(r prometheus.Registerer) error {
	for _, c := range collectors() {
		if err := r.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

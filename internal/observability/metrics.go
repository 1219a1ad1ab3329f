package observability

import "github.com/prometheus/client_golang/prometheus"

// Метрики ядра мира и его коллабораторов. Регистрируются в глобальном
// регистре Prometheus при импорте пакета.
var (
	FramesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "worldcore",
		Name:      "frames_total",
		Help:      "Число покадровых тиков Update().",
	})
	EnvChecksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "worldcore",
		Name:      "env_checks_total",
		Help:      "Проверки окружающих чанков, реально выполненные (после латча готовности).",
	})
	SpawnRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "worldcore",
		Name:      "spawn_requests_total",
		Help:      "Запросы GET_HIGHEST для высоты спавна.",
	})
	StaleRepliesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "worldcore",
		Name:      "spawn_stale_replies_total",
		Help:      "Ответы о высоте спавна, пришедшие после закрытия мира.",
	})
	MutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "worldcore",
		Name:      "world_mutations_total",
		Help:      "Мутации фактов мира, переданные транспорту персистентности.",
	}, []string{"fact"})
	MutationFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "worldcore",
		Name:      "world_mutation_failures_total",
		Help:      "Мутации, отклонённые транспортом (без повторов).",
	})

	StorageWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storage",
		Name:      "writes_total",
		Help:      "Записи обновлений мира в хранилище.",
	}, []string{"driver", "result"})
	StorageQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "storage",
		Name:      "queue_depth",
		Help:      "Обновления, ожидающие записи.",
	})

	WorkerJobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "worker",
		Name:      "jobs_total",
		Help:      "Выполненные задания воркеров.",
	}, []string{"cmd"})
	ChunksLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "chunks",
		Name:      "loaded",
		Help:      "Число загруженных чанков.",
	})
	ChunksEvictedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chunks",
		Name:      "evicted_total",
		Help:      "Чанки, выгруженные за пределами радиуса.",
	})
)

func init() {
	prometheus.MustRegister(
		FramesTotal, EnvChecksTotal, SpawnRequestsTotal, StaleRepliesTotal,
		MutationsTotal, MutationFailuresTotal,
		StorageWritesTotal, StorageQueueDepth,
		WorkerJobsTotal, ChunksLoaded, ChunksEvictedTotal,
	)
}

package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trainer_steps_total",
		Help: "Total number of optimizer steps taken",
	})

	epochsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trainer_epochs_total",
		Help: "Total number of training epochs completed",
	})

	trainLossGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trainer_train_loss",
		Help: "Training loss of the most recent step",
	})

	valLossGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trainer_val_loss",
		Help: "Validation loss of the most recent validation pass",
	})
)

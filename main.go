package main

import (
	"context"
	"encoding/gob"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	torch "github.com/wangkuiyi/gotorch"
	"github.com/wangkuiyi/gotorch/nn/initializer"
	"github.com/wangkuiyi/gotorch/vision/models"
	"github.com/wangkuiyi/gotorch/vision/transforms"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"

	"coach/data"
	"coach/engine"
	"coach/ml"
)

func init() {
	// TrainConfig rides along in checkpoints as the opaque config value.
	gob.Register(TrainConfig{})
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s train|predict [flags]\n", os.Args[0])
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "train":
		err = train(ctx, os.Args[2:])
	case "predict":
		err = predict(ctx, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "usage: %s train|predict [flags]\n", os.Args[0])
		os.Exit(2)
	}
	if err != nil {
		clog.FromContext(ctx).Errorf("%v", err)
		os.Exit(1)
	}
}

// mnistNet adapts the gotorch MLP to ml.Model, moving inputs to its device
// on the way in.
type mnistNet struct {
	net    *models.MLPModule
	device torch.Device
}

func (m *mnistNet) Forward(x torch.Tensor) torch.Tensor {
	return m.net.Forward(x.To(m.device, x.Dtype()))
}

func (m *mnistNet) StateDict() map[string]torch.Tensor {
	return m.net.StateDict()
}

// deviceLoss moves targets to the device before delegating, mirroring what
// mnistNet does for inputs.
type deviceLoss struct {
	device torch.Device
	loss   ml.Loss
}

func (l deviceLoss) Compute(targets, estimates torch.Tensor, infos data.Infos) (torch.Tensor, error) {
	return l.loss.Compute(targets.To(l.device, targets.Dtype()), estimates, infos)
}

func train(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	trainTar := fs.String("data", "./datasets/mnist_png/mnist_png_training_shuffled.tar.gz", "training data tarball")
	testTar := fs.String("test", "", "validation data tarball")
	save := fs.String("save", "./mnist_model.ckpt", "checkpoint file")
	histPath := fs.String("history", "", "per-epoch CSV file")
	cfgPath := fs.String("config", "", "YAML config file")
	fs.Parse(args)

	cfg, err := loadTrainConfig(ctx, *cfgPath)
	if err != nil {
		return err
	}
	log := clog.FromContext(ctx)

	device := ml.DetectDevice()
	if torch.IsCUDAAvailable() {
		log.Infof("CUDA is valid")
	} else {
		log.Infof("no CUDA found; CPU only")
	}
	initializer.ManualSeed(cfg.Seed)

	vocab, err := data.BuildVocabulary(*trainTar)
	if err != nil {
		return fmt.Errorf("build label vocabulary: %w", err)
	}
	imgCfg := data.ImageConfig{BatchSize: cfg.BatchSize, Seed: cfg.Seed}
	trainSrc := data.NewImageTarball(*trainTar, vocab, imgCfg)

	model := &mnistNet{net: models.MLP(), device: device}
	model.net.To(device)
	opt := torch.SGD(cfg.LR, 0.5, 0, 0, false)
	opt.AddParameters(model.net.Parameters())

	opts := []engine.Option{
		engine.WithScheduler(ml.NewStepLR(opt, cfg.LR, 5, 0.5)),
		engine.WithConfig(cfg),
	}
	if *testTar != "" {
		opts = append(opts, engine.WithValidationSource(data.NewImageTarball(*testTar, vocab, imgCfg)))
	}
	system := engine.NewSystem(model, opt, deviceLoss{device: device, loss: ml.NLLLoss{}}, trainSrc, opts...)

	trainer := engine.Trainer{
		MaxEpochs:      cfg.Epochs,
		LogEvery:       cfg.LogEvery,
		CheckpointPath: *save,
		HistoryPath:    *histPath,
	}

	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler()}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		defer func() {
			shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shCancel()
			srv.Shutdown(shCtx)
		}()
		return trainer.Fit(ctx, system)
	})
	return g.Wait()
}

func predict(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	load := fs.String("load", "./mnist_model.ckpt", "checkpoint file")
	fs.Parse(args)

	ck, err := engine.LoadCheckpoint(*load)
	if err != nil {
		return err
	}
	if len(ck.ModelState) == 0 {
		return fmt.Errorf("checkpoint %s carries no model state", *load)
	}
	clog.FromContext(ctx).Infof("loaded checkpoint from epoch %d", ck.Epoch)
	net := models.MLP()
	if err := net.SetStateDict(ck.ModelState); err != nil {
		return fmt.Errorf("restore model state: %w", err)
	}

	for _, arg := range fs.Args() {
		for _, pattern := range strings.Split(arg, ":") {
			fns, err := filepath.Glob(pattern)
			if err != nil {
				return err
			}
			for _, fn := range fns {
				fmt.Println(fn, predictFile(fn, net))
			}
		}
	}
	return nil
}

func predictFile(fn string, net *models.MLPModule) any {
	img := gocv.IMRead(fn, gocv.IMReadGrayScale)
	t := transforms.ToTensor().Run(img)
	n := transforms.Normalize([]float32{0.1307}, []float32{0.3081}).Run(t)
	return net.Forward(n).Argmax().Item()
}

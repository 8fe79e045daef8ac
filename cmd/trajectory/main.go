// Command trajectory runs the analytics pipeline against a webcam or video
// file, using a Haar cascade as a stand-in for a real detector.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-trajectory/config"
	"github.com/nvr-ai/go-trajectory/pipeline"
)

func main() {
	var (
		deviceID    = flag.Int("device", 0, "video capture device ID")
		input       = flag.String("input", "", "video file path (overrides -device)")
		cascadeFile = flag.String("cascade", "haarcascade_frontalface_default.xml", "Haar cascade model file")
		configFile  = flag.String("config", "", "YAML session configuration")
	)
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Logging.SlogLevel(),
	}))
	slog.SetDefault(logger)

	proc, err := pipeline.NewProcessor(cfg.PipelineConfig(), logger)
	if err != nil {
		logger.Error("create processor", "error", err)
		os.Exit(1)
	}

	var capture *gocv.VideoCapture
	if *input != "" {
		capture, err = gocv.VideoCaptureFile(*input)
	} else {
		capture, err = gocv.OpenVideoCapture(*deviceID)
	}
	if err != nil {
		logger.Error("open capture", "error", err)
		os.Exit(1)
	}
	defer capture.Close()

	classifier := gocv.NewCascadeClassifier()
	defer classifier.Close()
	if !classifier.Load(*cascadeFile) {
		logger.Error("load cascade", "file", *cascadeFile)
		os.Exit(1)
	}

	window := gocv.NewWindow("Trajectory Analytics")
	defer window.Close()

	img := gocv.NewMat()
	defer img.Close()

	tracks := newAssigner()
	logger.Info("session started", "session", proc.ID(), "counting", proc.CountingEnabled())

	for {
		if ok := capture.Read(&img); !ok {
			logger.Info("capture drained")
			break
		}
		if img.Empty() {
			continue
		}

		rects := classifier.DetectMultiScale(img)
		dets := tracks.assign(rects, 0)

		res, err := proc.Process(&img, dets)
		if err != nil {
			logger.Error("process frame", "error", err)
			break
		}
		logger.Debug("frame",
			"index", res.FrameIndex, "detections", len(dets),
			"in", res.InTotal, "out", res.OutTotal)

		window.IMShow(img)
		if window.WaitKey(1) == 'q' {
			break
		}
	}

	if t := proc.Timer(); t != nil {
		fmt.Print(t.Report())
	}
}

package main

import (
	"danet/ml"
	"danet/util"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [-data tgz] [-seed n] <batch-size> <lr> <momentum> <model-path>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "       %s predict -load <model-path> <glob>...\n", os.Args[0])
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "predict" {
		predict(os.Args[2:])
		return
	}
	train(os.Args[1:])
}

func train(args []string) {
	trainCmd := flag.NewFlagSet("train", flag.ExitOnError)
	trainCmd.Usage = usage
	data := trainCmd.String("data", "", "training images tarball; empty trains on synthetic batches")
	seed := trainCmd.Int64("seed", 1, "parameter initialization seed")
	logDir := trainCmd.String("logdir", ".", "directory for run and plot logs")
	dryBatches := trainCmd.Int("dry-batches", 100, "synthetic batches per epoch when -data is empty")
	debug := trainCmd.Bool("debug", false, "print debug output")
	trainCmd.Parse(args)

	if trainCmd.NArg() != 4 {
		usage()
		os.Exit(2)
	}
	bs, err := strconv.Atoi(trainCmd.Arg(0))
	if err != nil {
		log.Fatalf("batch size: %v", err)
	}
	lr, err := strconv.ParseFloat(trainCmd.Arg(1), 64)
	if err != nil {
		log.Fatalf("learning rate: %v", err)
	}
	mom, err := strconv.ParseFloat(trainCmd.Arg(2), 64)
	if err != nil {
		log.Fatalf("momentum: %v", err)
	}
	cfg := ml.RunConfig{
		BatchSize: bs,
		LR:        lr,
		Momentum:  mom,
		ModelPath: trainCmd.Arg(3),
		Epochs:    ml.DefaultEpochs,
		LogEvery:  ml.DefaultLogEvery,
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid run config: %v", err)
	}

	util.SetDebug(*debug)
	runID := util.NewRunID()
	logFile, err := util.InitLogger(*logDir, runID)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logFile.Close()
	plotFile, err := util.InitPlotLogger(*logDir, runID, "train")
	if err != nil {
		log.Fatalf("init plot logger: %v", err)
	}
	defer plotFile.Close()

	ctx := ml.NewContext(*seed)
	util.Logger.Printf("run=%s %s", runID, ctx.Describe())

	var source ml.BatchSource
	if *data == "" {
		util.Logger.Println("No -data given; training on synthetic batches")
		source = ml.DumbSource{NumBatches: *dryBatches, H: 28, W: 28, Seed: *seed}
	} else {
		tgz, err := ml.NewTgzSource(*data)
		if err != nil {
			log.Fatal(err)
		}
		util.Debug(tgz.Vocab)
		source = tgz
	}

	net, _, err := ml.LoadOrCreate(ctx, cfg.ModelPath)
	if err != nil {
		log.Fatal(err)
	}
	util.Logger.Println(net)

	trainer, err := ml.NewTrainer(ctx, net, cfg)
	if err != nil {
		log.Fatalf("invalid run config: %v", err)
	}
	if _, err := trainer.Run(source); err != nil {
		log.Fatalf("training failed: %v", err)
	}
}

func predict(args []string) {
	predictCmd := flag.NewFlagSet("predict", flag.ExitOnError)
	predictCmd.Usage = usage
	load := predictCmd.String("load", "", "the model file")
	seed := predictCmd.Int64("seed", 1, "parameter initialization seed")
	predictCmd.Parse(args)

	if *load == "" || predictCmd.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	ctx := ml.NewContext(*seed)
	preds, err := ml.Predict(ctx, *load, predictCmd.Args())
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range preds {
		fmt.Printf("%s: %d\n", p.File, p.Class)
	}
}

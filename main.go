package main

import (
	"log/slog"

	"pixelate/batch"
	"pixelate/convert"
	"pixelate/parallel"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

var cli struct {
	Image   convert.CLICmd `cmd:"" default:"withargs" help:"Pixelate a single image"`
	Batch   batch.CLICmd   `cmd:"" help:"Pixelate every image in a folder"`
	Workers int            `help:"Number of parallel workers. Defaults to the CPU count" default:"0" env:"PIXELATE_WORKERS"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	kctx := kong.Parse(&cli,
		kong.Name("pixelate"),
		kong.Description("Downsample an image onto a coarse virtual grid and expand every cell back into a solid block."),
		kong.UsageOnError(),
	)

	pool := parallel.Start(cli.Workers)
	err := kctx.Run(pool)
	pool.Wait(true)
	kctx.FatalIfErrorf(err)
}

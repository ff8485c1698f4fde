// Command transcriptor turns an audio or video file into a Word
// transcript. It normalizes the media, runs speech recognition with a
// live progress bar, and drops the document in the output directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/kbukum/transcriptor/config"
	"github.com/kbukum/transcriptor/document"
	"github.com/kbukum/transcriptor/errors"
	"github.com/kbukum/transcriptor/logger"
	"github.com/kbukum/transcriptor/media"
	"github.com/kbukum/transcriptor/process"
	"github.com/kbukum/transcriptor/progress"
	"github.com/kbukum/transcriptor/session"
	"github.com/kbukum/transcriptor/transcription"
	"github.com/kbukum/transcriptor/version"

	// Engine registration.
	_ "github.com/kbukum/transcriptor/transcription/sidecar"
	_ "github.com/kbukum/transcriptor/transcription/whispercpp"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "transcriptor: config: %v\n", err)
		return errors.ExitUsage
	}

	var (
		language     = flag.String("language", cfg.Language, "spoken language code ("+languageList()+")")
		model        = flag.String("model", cfg.Model, "recognition model ("+modelList()+")")
		engineName   = flag.String("engine", cfg.Engine, "transcription engine (whispercpp, sidecar)")
		outputDir    = flag.String("output", cfg.OutputDir, "directory for the finished document")
		timestamps   = flag.Bool("timestamps", cfg.Timestamps, "prefix each paragraph with the segment start time")
		reveal       = flag.Bool("reveal", cfg.RevealOutput, "open a file browser at the document on success")
		showVersion  = flag.Bool("version", false, "print version and exit")
		listLanguage = flag.Bool("languages", false, "list supported languages and exit")
	)
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return 0
	}
	if *listLanguage {
		printLanguages()
		return 0
	}
	if flag.NArg() != 1 {
		usage()
		return errors.ExitUsage
	}
	inputPath := flag.Arg(0)

	cfg.Language = *language
	cfg.Model = *model
	cfg.Engine = *engineName
	cfg.OutputDir = *outputDir
	cfg.Timestamps = *timestamps
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "transcriptor: %v\n", err)
		return errors.ExitUsage
	}

	logger.Init(cfg.Logging)
	log := logger.WithComponent("cli")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := buildEngine(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "transcriptor: %v\n", err)
		return errors.ExitUsage
	}

	normalizer := media.New(media.Config{
		FFmpegBinary:   cfg.FFmpeg.Binary,
		FFprobeBinary:  cfg.FFmpeg.ProbeBinary,
		ExtractTimeout: time.Duration(cfg.FFmpeg.TimeoutSeconds) * time.Second,
	})
	assembler := document.New(document.Config{Timestamps: cfg.Timestamps})
	controller := session.New(normalizer, engine, assembler, progress.NewReporter(),
		session.WithTempParent(cfg.TempDir))

	result, err := controller.Run(ctx, session.Request{
		InputPath: inputPath,
		Language:  cfg.Language,
		Model:     cfg.Model,
		OutputDir: cfg.OutputDir,
	})
	if err != nil {
		// One line on stderr naming the failed stage and the error kind.
		fmt.Fprintf(os.Stderr, "\ntranscriptor: %s failed [%s]: %s\n",
			stageOrRun(err), errors.Code(err), err.Error())
		return errors.ExitCode(err)
	}

	fmt.Fprintf(os.Stderr, "\nDone in %s: %s\n",
		result.Elapsed.Round(time.Second), result.Document.Path)

	if *reveal {
		if err := revealInFileBrowser(ctx, result.Document.Path); err != nil {
			log.Debug("could not open file browser", logger.Fields("error", err.Error()))
		}
	}
	return 0
}

// buildEngine instantiates the configured engine through the registry.
func buildEngine(cfg *config.Config) (transcription.Engine, error) {
	switch cfg.Engine {
	case "sidecar":
		return transcription.NewEngine(cfg.Engine, map[string]any{
			"url":     cfg.Sidecar.URL,
			"timeout": time.Duration(cfg.Sidecar.TimeoutSeconds) * time.Second,
		})
	default:
		return transcription.NewEngine(cfg.Engine, map[string]any{
			"cache_dir":       cfg.CacheDir,
			"download_status": downloadBar(),
		})
	}
}

// downloadBar renders model download progress as a byte-count bar,
// created lazily once the total size is known.
func downloadBar() func(written, total int64) {
	var bar *progressbar.ProgressBar
	return func(written, total int64) {
		if bar == nil {
			bar = progressbar.DefaultBytes(total, "downloading model")
		}
		if err := bar.Set64(written); err != nil {
			return
		}
	}
}

func stageOrRun(err error) string {
	if s := errors.Stage(err); s != "" {
		return s
	}
	return "run"
}

// revealInFileBrowser opens the platform file manager at path.
func revealInFileBrowser(ctx context.Context, path string) error {
	var cmd process.Command
	switch runtime.GOOS {
	case "darwin":
		cmd = process.Command{Binary: "open", Args: []string{"-R", path}}
	case "windows":
		cmd = process.Command{Binary: "explorer", Args: []string{"/select,", path}}
	default:
		cmd = process.Command{Binary: "xdg-open", Args: []string{filepath.Dir(path)}}
	}
	_, err := process.Run(ctx, cmd)
	return err
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: transcriptor [flags] <media-file>

Transcribes an audio or video file (%s)
into a .docx document in your Downloads directory.

Flags:
`, strings.Join(media.Extensions(), " "))
	flag.PrintDefaults()
}

func languageList() string {
	codes := make([]string, 0, len(transcription.Languages))
	for code := range transcription.Languages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return strings.Join(codes, ", ")
}

func modelList() string {
	names := make([]string, 0, len(transcription.Models))
	for name := range transcription.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func printLanguages() {
	codes := make([]string, 0, len(transcription.Languages))
	for code := range transcription.Languages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Printf("%-4s %s\n", code, transcription.Languages[code])
	}
}

// Command webmmux muxes a directory of numbered WebP keyframes into a
// WebM file, streaming directly to disk.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/nvllz/webmwriter/internal/framesource"
	"github.com/nvllz/webmwriter/internal/webmverify"
	"github.com/nvllz/webmwriter/webm"
)

var (
	frameDir    string
	outPath     string
	frameRate   float64
	transparent bool
	watch       bool
	verify      bool
	verbose     bool
)

func init() {
	pflag.StringVarP(&frameDir, "frames", "i", "", "directory of frame-NNNNN.webp files to mux (required)")
	pflag.StringVarP(&outPath, "output", "o", "", "output .webm path (default: generated name)")
	pflag.Float64VarP(&frameRate, "fps", "r", 30, "frame rate")
	pflag.BoolVarP(&transparent, "transparent", "t", false, "emit AlphaMode and mux *.alpha.webp siblings as alpha")
	pflag.BoolVarP(&watch, "watch", "w", false, "keep watching the directory for new frames instead of exiting once it's drained")
	pflag.BoolVar(&verify, "verify", false, "re-parse the output with an independent EBML parser and check structural invariants")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "enable muxer diagnostic logging to stderr")
}

func setupUsage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "webmmux - mux a directory of WebP VP8 keyframes into a WebM file\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n  %s -i <frame-dir> [-o out.webm] [flags]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Flags:\n")
		pflag.PrintDefaults()
	}
}

func main() {
	setupUsage()
	pflag.Parse()

	if frameDir == "" {
		pflag.Usage()
		fmt.Fprintln(os.Stderr, "\nError: -i/--frames is required")
		os.Exit(1)
	}
	if outPath == "" {
		outPath = fmt.Sprintf("webmmux-%s.webm", uuid.NewString())
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()

	mux, err := webm.New(webm.Config{
		FrameRate:   frameRate,
		Transparent: transparent,
		File:        f,
		Verbose:     verbose,
	})
	if err != nil {
		return fmt.Errorf("init muxer: %w", err)
	}

	if watch {
		err = muxWatch(mux)
	} else {
		err = muxList(mux)
	}
	if err != nil {
		return err
	}

	if _, err := mux.Complete(); err != nil {
		return fmt.Errorf("complete: %w", err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", outPath, mux.WrittenSize())

	if verify {
		return runVerify()
	}
	return nil
}

func muxList(mux *webm.Muxer) error {
	frames, err := framesource.List(frameDir)
	if err != nil {
		return err
	}
	for _, fr := range frames {
		if err := addFrame(mux, fr); err != nil {
			return fmt.Errorf("frame %d (%s): %w", fr.Index, fr.Path, err)
		}
	}
	return nil
}

func muxWatch(mux *webm.Muxer) error {
	w, err := framesource.Watch(frameDir)
	if err != nil {
		return err
	}
	defer w.Close()

	for {
		select {
		case fr, ok := <-w.Frames():
			if !ok {
				return nil
			}
			if err := addFrame(mux, fr); err != nil {
				return fmt.Errorf("frame %d (%s): %w", fr.Index, fr.Path, err)
			}
		case err := <-w.Errors():
			return fmt.Errorf("watch %s: %w", frameDir, err)
		case <-time.After(30 * time.Second):
			fmt.Fprintln(os.Stderr, "webmmux: no new frames for 30s, stopping watch")
			return nil
		}
	}
}

func addFrame(mux *webm.Muxer, fr framesource.Frame) error {
	data, err := os.ReadFile(fr.Path)
	if err != nil {
		return err
	}
	var opts []webm.FrameOption
	if transparent && fr.Alpha != "" {
		alphaData, err := os.ReadFile(fr.Alpha)
		if err != nil {
			return err
		}
		opts = append(opts, webm.WithAlpha(webm.RawVP8WebP(alphaData)))
	}
	return mux.AddFrame(webm.RawVP8WebP(data), opts...)
}

func runVerify() error {
	data, err := os.ReadFile(outPath)
	if err != nil {
		return fmt.Errorf("verify: reread %s: %w", outPath, err)
	}
	if err := webmverify.Check(data); err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	fmt.Fprintln(os.Stderr, "verify: ok")
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/stevestencil/jot"
	"github.com/stevestencil/jot/script"
	"github.com/stevestencil/jot/utils"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// sceneExt is the extension of the scene files picked up in batch mode.
const sceneExt = ".toml"

// result holds the outcome of rendering one scene.
type result struct {
	path string
	err  error
}

type runner struct {
	Src, Dst, Bg, PipeName string
	Workers                int

	opts    jot.Options
	log     *slog.Logger
	spinner *utils.Spinner

	// bg is decoded once and shared read-only by every worker.
	bg image.Image
}

// execute renders a single scene, or every scene of a directory when Src
// is one.
func (r *runner) execute(ctx context.Context) error {
	fs, err := os.Stat(r.Src)
	if err != nil {
		return fmt.Errorf("failed to load the scene: %w", err)
	}
	if r.Bg != "" {
		if r.bg, err = r.loadBackground(); err != nil {
			return err
		}
	}

	if !fs.IsDir() {
		if r.Dst != r.PipeName && !jot.IsSupportedFormat(r.Dst) {
			return fmt.Errorf("%w: %s", jot.ErrUnsupportedFormat, filepath.Ext(r.Dst))
		}
		if r.spinner != nil {
			r.spinner.Start()
		}
		err := r.process(ctx, r.Src, r.Dst)
		if r.spinner != nil {
			r.spinner.StopMsg = statusMsg(err)
			r.spinner.Stop()
		}
		if err == nil && r.Dst != r.PipeName {
			r.printOpStatus(r.Dst)
		}
		return err
	}

	if r.Dst == r.PipeName {
		return errors.New("a directory of scenes needs an output directory")
	}
	if err := os.MkdirAll(r.Dst, 0755); err != nil {
		return fmt.Errorf("unable to create the destination directory: %w", err)
	}

	// Limit the concurrently running workers to maxWorkers.
	if r.Workers <= 0 || r.Workers > maxWorkers {
		r.Workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan result)
	paths, errc := walkDir(ctx, r.Src, sceneExt)

	var wg sync.WaitGroup
	wg.Add(r.Workers)
	for i := 0; i < r.Workers; i++ {
		go func() {
			defer wg.Done()
			r.consumer(ctx, paths, ch)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	var failed int
	for res := range ch {
		if res.err != nil {
			failed++
			r.log.Error("scene failed", slog.String("scene", res.path), slog.Any("err", res.err))
			continue
		}
		r.printOpStatus(res.path)
	}
	if err := <-errc; err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d scene(s) failed", failed)
	}
	return nil
}

// consumer renders the scenes received on paths until the channel is
// closed or ctx is cancelled.
func (r *runner) consumer(ctx context.Context, paths <-chan string, res chan<- result) {
	for src := range paths {
		name := strings.TrimSuffix(filepath.Base(src), sceneExt) + ".png"
		dst := filepath.Join(r.Dst, name)
		err := r.process(ctx, src, dst)

		select {
		case <-ctx.Done():
			return
		case res <- result{path: dst, err: err}:
		}
	}
}

// process loads, plays and renders one scene into out.
func (r *runner) process(ctx context.Context, in, out string) error {
	s, err := script.Load(in)
	if err != nil {
		return err
	}
	sc, err := s.Build(r.opts)
	if err != nil {
		return err
	}
	if err := sc.Play(ctx); err != nil {
		return err
	}
	img, err := sc.Render(r.bg)
	if err != nil {
		return err
	}

	dst, err := r.output(out)
	if err != nil {
		return err
	}
	if dst == os.Stdout {
		return jot.EncodeImage(dst, "", img)
	}
	if err := jot.EncodeImage(dst, out, img); err != nil {
		dst.Close()
		// remove the generated image file in case of an error
		os.Remove(out)
		return err
	}
	return dst.Close()
}

// output opens the destination file or the stdout pipe.
func (r *runner) output(out string) (*os.File, error) {
	if out == r.PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdout")
		}
		return os.Stdout, nil
	}
	f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("unable to create the destination file: %w", err)
	}
	return f, nil
}

// loadBackground decodes the background image from a URL, the stdin pipe
// or a local file.
func (r *runner) loadBackground() (image.Image, error) {
	var src io.Reader
	switch {
	case utils.IsValidUrl(r.Bg):
		f, err := utils.DownloadImage(r.Bg)
		if err != nil {
			return nil, err
		}
		defer func() {
			f.Close()
			os.Remove(f.Name())
		}()
		src = f
	case r.Bg == r.PipeName:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdin")
		}
		src = os.Stdin
	default:
		return jot.DecodeImage(r.Bg)
	}

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("could not decode the background image: %w", err)
	}
	return img, nil
}

// printOpStatus displays where a rendered scene has been saved.
func (r *runner) printOpStatus(fname string) {
	fmt.Fprintf(os.Stderr, "\nThe scene has been saved as: %s %s\n",
		utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
		utils.DefaultColor,
	)
}

func statusMsg(err error) string {
	if err != nil {
		return fmt.Sprintf("%s %s %s",
			utils.DecorateText("✎ JOT", utils.StatusMessage),
			utils.DecorateText("rendering failed...", utils.DefaultMessage),
			utils.DecorateText("✘", utils.ErrorMessage),
		)
	}
	return fmt.Sprintf("%s %s %s",
		utils.DecorateText("✎ JOT", utils.StatusMessage),
		utils.DecorateText("⇢", utils.DefaultMessage),
		utils.DecorateText("the scene has been rendered successfully ✔", utils.SuccessMessage),
	)
}

// walkDir starts a new goroutine to walk the src directory tree and sends
// the path of every file with the ext extension to a new channel.
// It finishes when ctx is cancelled.
func walkDir(ctx context.Context, src string, ext string) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() || filepath.Ext(f.Name()) != ext {
				return nil
			}
			select {
			case <-ctx.Done():
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

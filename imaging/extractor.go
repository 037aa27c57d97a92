package imaging

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/framewright/scenedetect/frame"
	"github.com/framewright/scenedetect/scene"
	"github.com/framewright/scenedetect/timecode"
)

// Writer persists one resized sample image to storage at path. No
// implementation is provided here: actual image encoding (JPEG/PNG/WebP)
// is out of scope per spec.md §1, the same boundary that keeps external
// splitter invocation interface-only in package report.
type Writer interface {
	Write(path string, img *frame.Image) error
}

// Config configures an Extractor's output.
type Config struct {
	NumImages      int
	FrameMargin    int
	ImageExtension string
	NameTemplate   string
	OutputDir      string
	Resize         ResizeOptions
	WorkerCount    int
}

// Extractor produces num_images representative sample frames per scene
// from src, resizes them per Config, and hands each to a Writer. Adapted
// from the teacher's example/video_comparator.go worker-pool shape: a
// single sequential producer (video seeks are inherently serial on one
// decoder) feeds a channel of decoded frames to a pool of resize/write
// workers, since resizing and encoding are the parallelizable part of
// save_images, not decoding.
type Extractor struct {
	src    frame.Source
	writer Writer
	cfg    Config
}

// NewExtractor returns an Extractor reading sample frames from src and
// handing resized output to writer.
func NewExtractor(src frame.Source, writer Writer, cfg Config) *Extractor {
	if cfg.NumImages <= 0 {
		cfg.NumImages = 3
	}
	if cfg.ImageExtension == "" {
		cfg.ImageExtension = "jpg"
	}
	if cfg.NameTemplate == "" {
		cfg.NameTemplate = DefaultNameTemplate
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	return &Extractor{src: src, writer: writer, cfg: cfg}
}

type sampleJob struct {
	sceneIndex int
	imageIndex int
	frameIndex int
	img        *frame.Image
}

type sampleResult struct {
	sceneIndex int
	imageIndex int
	path       string
}

// Run extracts and writes sample images for every scene, returning a map
// from 0-based scene index to its output paths in image-number order.
// Blocks until every sample has been written, an error occurs, or ctx is
// canceled.
func (e *Extractor) Run(ctx context.Context, scenes []scene.Scene) (map[int][]string, error) {
	if len(scenes) == 0 {
		return map[int][]string{}, nil
	}

	if err := e.src.Reset(); err != nil {
		return nil, fmt.Errorf("imaging: resetting source: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	indices := SceneSampleIndices(scenes, e.cfg.NumImages, e.cfg.FrameMargin)
	jobs := make(chan sampleJob, e.cfg.WorkerCount)
	results := make(chan sampleResult, e.cfg.WorkerCount*2)
	errs := make(chan error, e.cfg.WorkerCount+2)

	srcW, srcH := e.src.FrameSize()
	scratchW, scratchH := OutputDims(srcW, srcH, e.src.AspectRatio(), e.cfg.Resize)
	scratch := NewBlockingPool[*image.RGBA](e.cfg.WorkerCount)
	for i := 0; i < e.cfg.WorkerCount; i++ {
		scratch.Put(image.NewRGBA(image.Rect(0, 0, scratchW, scratchH)))
	}

	var wg sync.WaitGroup
	wg.Add(e.cfg.WorkerCount)
	for w := 0; w < e.cfg.WorkerCount; w++ {
		go e.worker(ctx, &wg, jobs, results, errs, len(scenes), &scratch)
	}

	go e.produce(ctx, indices, jobs, errs)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(results)
		close(done)
	}()

	out := make(map[int][]string, len(scenes))
	for i := range scenes {
		out[i] = make([]string, e.cfg.NumImages)
	}

collect:
	for {
		select {
		case err := <-errs:
			return nil, err
		case <-ctx.Done():
			return nil, ctx.Err()
		case r, ok := <-results:
			if !ok {
				break collect
			}
			out[r.sceneIndex][r.imageIndex] = r.path
		}
	}

	return out, nil
}

// produce sequentially seeks to and reads each sample frame, since a
// single frame.Source cannot be read from multiple goroutines at once.
func (e *Extractor) produce(ctx context.Context, indices [][]int, jobs chan<- sampleJob, errs chan<- error) {
	defer close(jobs)

	fps := e.src.BaseTimecode().FPS()
	for si, frameIndices := range indices {
		for ii, fi := range frameIndices {
			if ctx.Err() != nil {
				return
			}
			if err := e.src.Seek(timecode.New(fi, fps)); err != nil {
				select {
				case errs <- fmt.Errorf("imaging: seeking to frame %d: %w", fi, err):
				default:
				}
				return
			}
			img, err := e.src.Read()
			if err != nil {
				select {
				case errs <- fmt.Errorf("imaging: reading frame %d: %w", fi, err):
				default:
				}
				return
			}

			job := sampleJob{sceneIndex: si, imageIndex: ii, frameIndex: fi, img: img}
			select {
			case jobs <- job:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (e *Extractor) worker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan sampleJob, results chan<- sampleResult, errs chan<- error, numScenes int, scratch *BlockingPool[*image.RGBA]) {
	defer wg.Done()

	sceneDigitWidth := sceneDigits(numScenes)
	imageDigitWidth := imageDigits(e.cfg.NumImages)
	aspectRatio := e.src.AspectRatio()

	for job := range withContext(ctx, jobs) {
		buf := scratch.Get()
		resized := ResizeForSave(job.img, aspectRatio, e.cfg.Resize, buf)
		scratch.Put(buf)

		params := FilenameParams{
			VideoName:   e.src.Name(),
			SceneNumber: job.sceneIndex + 1,
			ImageNumber: job.imageIndex + 1,
			FrameNumber: job.frameIndex,
			SceneDigits: sceneDigitWidth,
			ImageDigits: imageDigitWidth,
		}
		name := RenderFilename(e.cfg.NameTemplate, params, e.cfg.ImageExtension)
		path := name
		if e.cfg.OutputDir != "" {
			path = filepath.Join(e.cfg.OutputDir, name)
		}

		if err := e.writer.Write(path, resized); err != nil {
			select {
			case errs <- fmt.Errorf("imaging: writing %q: %w", path, err):
			default:
			}
			return
		}

		select {
		case results <- sampleResult{sceneIndex: job.sceneIndex, imageIndex: job.imageIndex, path: path}:
		case <-ctx.Done():
			return
		}
	}
}

package main

import (
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// progressCallback returns an archiver.Config.Progress-shaped callback
// backed by an mpb bar, lazily created on the first call so zero-entry runs
// never draw one.
func progressCallback(label string) func(done, total int) {
	var (
		progress *mpb.Progress
		bar      *mpb.Bar
	)

	return func(done, total int) {
		if progress == nil {
			progress = mpb.New()
			bar = progress.AddBar(int64(total),
				mpb.PrependDecorators(decor.Name(label)),
				mpb.AppendDecorators(decor.CountersNoUnit("%d / %d")),
			)
		}

		bar.SetCurrent(int64(done))

		if done >= total {
			progress.Wait()
		}
	}
}

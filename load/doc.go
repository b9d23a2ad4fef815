// Package load describes asset loading as composable tasks with progress.
//
// A Task is a lazy recipe whose total work is known before it runs, so a
// loading screen can show consistent progress:
//
//	assets := load.Join(
//		load.Stage("Loading sprites...", sprites),
//		load.Stage("Loading font...", font),
//		func(s resource.TextureArray, f *text.Font) Assets { return Assets{s, f} },
//	)
//	v, err := assets.Run(ctx, registry, func(p load.Progress) {
//		fmt.Printf("%3.0f%% %s\n", p.Percentage(), p.Stage())
//	})
//
// Tasks run on the calling goroutine, one after another.
package load

// Package bootstrap decides, once per launch, whether memoui is starting
// for the first time or reloading saved notes.
//
// # Startup Paths
//
// The controller reads the settings record first:
//
//   - No settings, or settings without an active document: first run
//     (OOBE). A new document with one empty slide per configured tab is
//     created and saved together with the settings in one transaction.
//   - Settings naming an active document: reload. The document is loaded
//     and Migrate reconciles its slides with the configured tabs.
//
// # Failure
//
// Any error leaves the controller in StateFailed with a Notice for the
// user. Startup never overwrites or deletes stored records on failure, so
// a missing or damaged document stays as it is on disk.
//
// # Migration
//
// Migrate appends slides, titled by tab position, when tabs were added and
// drops slides from the tail when tabs were removed. Stored titles are
// never matched against tab names. The result is not persisted by itself;
// the first autosave after an edit writes it.
//
// # Usage
//
//	ctrl := bootstrap.New(st, bootstrap.Options{Tabs: cfg.Slides.Tabs})
//	sess, err := ctrl.Start(ctx)
//	if err != nil {
//	    fmt.Println(ctrl.Notice())
//	}
package bootstrap

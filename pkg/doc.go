// Package pkg holds the quizgrid libraries.
//
// Data flows from the layout rules outward:
//
//	[grid]      12×12 cell geometry, collision checks, placement policies
//	   ↓
//	[quiz]      quizzes and their placed components
//	   ↓
//	[store]     persistence (memory, file, sqlite, redis, mongo)
//	   ↓
//	[editor]    admin flows: place, remove, submit, create, delete
//	   ↓
//	[render]    HTML pages and terminal previews
//	   ↓
//	[server]    chi HTTP surface with a page [cache]
//
// Supporting packages: [config] (TOML settings), [errors] (coded errors),
// [observability] (hook registry), [io] (layout import/export) and
// [buildinfo] (version metadata).
package pkg

/*
Package status manages file storage and the change report for sitesweep.

	            +-------------+
	            |   Manager   |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|   Files   |           | Report  |
	| (Storage) |           | (UI/UX) |
	+-----------+           +---------+

🎯 Purpose:
  - Reads and atomically rewrites files under a root
  - Keeps .backup copies and restores them
  - Tracks what happened to every file, in processing order
  - Formats outcomes for the console

🔄 Flow:
 1. The transformer reads a file through the Manager
 2. Modified content is written with WriteFileAtomic (temp file + rename)
 3. The outcome is recorded with TrackFile
 4. Report snapshots the outcomes for the summary

⚡ Guarantees:
  - A file is either untouched or replaced in a single rename
  - BackupFile never overwrites an existing backup, so the backup holds the
    content from before the first run
  - RestoreFile renames the backup over the file, leaving no backup behind

🤝 Interfaces:
  - FileManager: file operations
  - StatusReporter: status tracking and progress
  - FileFormatter: status messages for the structured log

🔍 Example:

	mgr := status.NewManager(root, nil)

	content, err := mgr.ReadFile(ctx, "klaviyo-review/index.html")
	err = mgr.WriteFileAtomic(ctx, "klaviyo-review/index.html", updated)
	mgr.TrackFile(ctx, status.FileInfo{Path: "klaviyo-review/index.html", Status: status.StatusModified})

	counts := mgr.Report(ctx).Counts()
*/
package status

/*
Package operation implements the batch text transformer and the restore operation.

	+-------------+
	|  Discover   |
	|  (fileset)  |
	+------+------+
	       |
	+------+------+
	|  Transform  |
	|   (rules)   |
	+------+------+
	       |
	+------+------+
	|    Store    |
	|  (status)   |
	+-------------+

🎯 Purpose:
  - Walks a site tree and threads every page through an ordered rule list
  - Writes a page back only when its text changed, in a single atomic rename
  - Records the outcome of every file in the status manager

🔄 Flow:
 1. Discover files under the root (lexical order, exclusions applied)
 2. Read each file once, rejecting content that is not valid UTF-8
 3. Run the rule chain, checking every rule's precondition first
 4. Optionally back the file up, then write it atomically
 5. Track the outcome

⚡ Failure semantics:
  - Read, rule and write failures are FileErrors of kind ErrRead, ErrPattern or
    ErrWrite. They are recorded for that file and the batch continues.
  - Only setup failures (missing root, bad options) and context cancellation
    stop a run. Files written before a cancellation stay written.

The transformer is sequential. One pass owns one document and no
two files are in flight at the same time.

🔍 Example:

	mgr := status.NewManager(root, nil)
	op := operation.NewTransformOperation(operation.Options{
		Root:      root,
		BaseURL:   cfg.Site.BaseURL,
		Rules:     rules,
		StatusMgr: mgr,
	})
	if err := op.Execute(ctx); err != nil {
		return err
	}
	report := mgr.Report(ctx)
*/
package operation

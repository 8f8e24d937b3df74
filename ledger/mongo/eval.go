package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/docmigrate-dev/docmigrate/log"
)

// evalResult is the document returned by the server's eval command: a
// top-level status plus an optional nested return value carrying its own
// status. A missing ok field means success at that level.
type evalResult struct {
	OK     *float64   `bson:"ok"`
	ErrMsg string     `bson:"errmsg"`
	RetVal *evalValue `bson:"retval"`
}

type evalValue struct {
	OK     *float64 `bson:"ok"`
	ErrMsg string   `bson:"errmsg"`
}

// verdict folds both status levels into one success/failure outcome. An
// explicit ok == 0 at either level is a failure carrying that level's error
// message.
func (r evalResult) verdict() error {
	if r.OK != nil && *r.OK == 0 {
		return fmt.Errorf("script execution failed with error: %s", r.ErrMsg)
	}
	if r.RetVal != nil && r.RetVal.OK != nil && *r.RetVal.OK == 0 {
		return fmt.Errorf("script execution failed with error: %s", r.RetVal.ErrMsg)
	}
	return nil
}

// RunScript sends the change set's opaque payload to the server's eval
// command and converts any explicit not-ok status into an error. It blocks
// until the server responds; there is no timeout beyond the context's.
func (s *Store) RunScript(ctx context.Context, script string) error {
	res := s.db.RunCommand(ctx, bson.D{{Key: "eval", Value: script}})

	var result evalResult
	if err := res.Decode(&result); err != nil {
		return fmt.Errorf("failed to execute script: %w", err)
	}

	if err := result.verdict(); err != nil {
		return err
	}

	log.InfoContext(ctx, "script executed", "database", s.db.Name())
	return nil
}

// Package inline provides the implementation for the application's non-interactive, programmable execution mode.
package inline

import (
	"context"
	"fmt"
	"os"

	"github.com/vsel-cli/vsel/resolver"
)

// Run resolves the request and writes the outcome to the configured writer:
// the full result as JSON, or the chosen candidate's episode URLs one per
// line for shell pipelines.
func Run(ctx context.Context, r *resolver.Resolver, options *Options) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}

	result, err := r.Resolve(ctx, options.Request)
	if err != nil {
		return err
	}

	if picker, ok := options.Picker.Get(); ok {
		choice, ok := picker(result.Candidates).Get()
		if !ok {
			return fmt.Errorf("picker selected no candidate out of %d", len(result.Candidates))
		}
		result.Chosen = choice
	}

	if options.Json {
		return writeJson(options.Out, options.Request.Title, result)
	}

	for _, episode := range result.Chosen.Episodes {
		fmt.Fprintln(options.Out, episode)
	}
	return nil
}

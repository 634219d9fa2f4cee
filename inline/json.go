// Package inline provides the implementation for the application's non-interactive, programmable execution mode.
package inline

import (
	"encoding/json"
	"io"

	"github.com/vsel-cli/vsel/resolver"
)

// Output is the machine-readable envelope written in JSON mode.
type Output struct {
	Query  string          `json:"query,omitempty"`
	Result resolver.Result `json:"result"`
}

func writeJson(out io.Writer, query string, result resolver.Result) error {
	data, err := json.Marshal(&Output{
		Query:  query,
		Result: result,
	})
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

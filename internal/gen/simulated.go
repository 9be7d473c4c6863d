package gen

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Simulated is a deterministic offline provider. It emits a skeleton in the
// requested language so the rest of the pipeline (scanning, reporting, the
// HTTP API) can be exercised without network access or credentials.
type Simulated struct{}

func NewSimulated() *Simulated { return &Simulated{} }

func (s *Simulated) Name() string { return "simulated" }

func (s *Simulated) Generate(ctx context.Context, req Request) (Generation, error) {
	if err := ctx.Err(); err != nil {
		return Generation{}, err
	}
	if strings.TrimSpace(req.Description) == "" {
		return Generation{}, errors.New("description is required")
	}

	language := strings.ToLower(req.Language)
	if language == "" {
		language = "python"
	}

	var code string
	switch language {
	case "python":
		code = fmt.Sprintf("# %s\n\ndef main():\n    \"\"\"%s\"\"\"\n    raise NotImplementedError\n\n\nif __name__ == \"__main__\":\n    main()\n",
			summarize(req.Description), req.Description)
	case "javascript", "typescript":
		code = fmt.Sprintf("// %s\n\nfunction main() {\n  // %s\n  throw new Error(\"not implemented\");\n}\n\nmain();\n",
			summarize(req.Description), req.Description)
	case "go":
		code = fmt.Sprintf("// %s\npackage main\n\nfunc main() {\n\t// %s\n\tpanic(\"not implemented\")\n}\n",
			summarize(req.Description), req.Description)
	default:
		code = fmt.Sprintf("# %s\n# language: %s\n# not implemented\n", summarize(req.Description), language)
	}

	return Generation{
		Code:     code,
		Provider: s.Name(),
		Model:    "template-v1",
		Language: language,
	}, nil
}

// summarize keeps the first line of a description, bounded for header use
func summarize(description string) string {
	line := strings.TrimSpace(strings.SplitN(description, "\n", 2)[0])
	if len(line) > 120 {
		line = line[:120]
	}
	return line
}

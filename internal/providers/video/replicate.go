package video

import (
	"context"
	"fmt"
	"strings"

	"github.com/replicate/replicate-go"
)

const (
	replicateProviderName = "replicate"
	defaultReplicateModel = "anotherjesse/zeroscope-v2-xl:9f747673945c62801b13b84701c783929c0ee784e4748ec062204894dda1a351"
)

// ReplicateOptions configures the Replicate provider.
type ReplicateOptions struct {
	APIToken string
	Model    string
}

type replicateRunFunc func(ctx context.Context, identifier string, input replicate.PredictionInput) (replicate.PredictionOutput, error)

// Replicate runs a text-to-video model synchronously and returns its first
// output URL.
type Replicate struct {
	model string
	run   replicateRunFunc
}

func NewReplicate(opts ReplicateOptions) (*Replicate, error) {
	token := strings.TrimSpace(opts.APIToken)
	if token == "" {
		return nil, providerError(replicateProviderName, errNoKey)
	}
	client, err := replicate.NewClient(replicate.WithToken(token))
	if err != nil {
		return nil, providerError(replicateProviderName, err)
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultReplicateModel
	}
	return &Replicate{
		model: model,
		run: func(ctx context.Context, identifier string, input replicate.PredictionInput) (replicate.PredictionOutput, error) {
			return client.Run(ctx, identifier, input, nil)
		},
	}, nil
}

func (r *Replicate) Name() string {
	return replicateProviderName
}

func (r *Replicate) Generate(ctx context.Context, prompt string) (string, error) {
	input := replicate.PredictionInput{
		"prompt":           prompt,
		"fps":              24,
		"width":            1024,
		"height":           576,
		"guidance_scale":   17.5,
		"remove_watermark": true,
	}
	output, err := r.run(ctx, r.model, input)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", providerError(replicateProviderName, err)
	}
	url := firstOutputURL(output)
	if url == "" {
		return "", providerErrorf(replicateProviderName, "no output url in %T", output)
	}
	return url, nil
}

func firstOutputURL(output any) string {
	switch v := output.(type) {
	case string:
		return strings.TrimSpace(v)
	case []string:
		for _, s := range v {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	case []any:
		for _, item := range v {
			if s := firstOutputURL(item); s != "" {
				return s
			}
		}
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	}
	return ""
}

var _ Generator = (*Replicate)(nil)

package fal

import "context"

// EditImageInput is the request body of image-to-image models such as flux-pro/kontext.
type EditImageInput struct {
	ImageURL        string  `json:"image_url"`
	Prompt          string  `json:"prompt"`
	GuidanceScale   float64 `json:"guidance_scale"`
	NumImages       int     `json:"num_images"`
	OutputFormat    string  `json:"output_format"`
	SafetyTolerance string  `json:"safety_tolerance,omitempty"`
	Seed            *int64  `json:"seed,omitempty"`
}

type Image struct {
	URL         string `json:"url"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

type EditImageOutput struct {
	Images          []Image `json:"images"`
	Seed            *int64  `json:"seed,omitempty"`
	Prompt          string  `json:"prompt,omitempty"`
	HasNSFWConcepts []bool  `json:"has_nsfw_concepts,omitempty"`
}

func (c *Client) EditImage(ctx context.Context, model string, input EditImageInput) (*EditImageOutput, error) {
	var out EditImageOutput
	if _, err := c.Subscribe(ctx, model, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

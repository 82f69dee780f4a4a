package slides

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"google.golang.org/api/option"
	slidesapi "google.golang.org/api/slides/v1"
)

// ErrNoImages distinguishes "nothing to build" from a remote failure.
// Callers skip the item instead of retrying.
var ErrNoImages = errors.New("no images to build slides from")

// maxTitleLength bounds the presentation title sent to the API.
const maxTitleLength = 100

// Slide geometry in EMU, fixed across all presentations: the image fills
// most of a 10x7.5in slide, the caption sits under it, and a small link box
// sits at the very bottom.
const (
	emuUnit = "EMU"

	imageWidth  = 9000000
	imageHeight = 6750000
	margin      = 360000

	captionWidth  = 9000000
	captionHeight = 720000
	captionY      = 6480000

	linkWidth  = 1440000
	linkHeight = 360000
	linkY      = 7200000
)

// SlideImage is one slide's worth of input: the image URL and the caption
// lines rendered under it.
type SlideImage struct {
	URL          string
	CaptionLines []string
}

// Builder creates Google Slides presentations, one slide per image.
type Builder struct {
	svc *slidesapi.Service
}

// NewBuilder creates a Builder over an authenticated client.
func NewBuilder(client *http.Client) (*Builder, error) {
	svc, err := slidesapi.NewService(context.Background(), option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create slides service: %w", err)
	}
	return &Builder{svc: svc}, nil
}

// Create builds one presentation titled after the item, with one slide per
// image carrying its caption and a link back to the source page. Returns
// the presentation ID and URL.
func (b *Builder) Create(title string, images []SlideImage, sourceURL, sourceLabel string) (string, string, error) {
	if len(images) == 0 {
		return "", "", ErrNoImages
	}

	title = truncateTitle(title)

	presentation, err := b.svc.Presentations.Create(&slidesapi.Presentation{Title: title}).Do()
	if err != nil {
		return "", "", fmt.Errorf("failed to create presentation: %w", err)
	}

	var defaultSlideID string
	if len(presentation.Slides) > 0 {
		defaultSlideID = presentation.Slides[0].ObjectId
	}

	requests := buildRequests(defaultSlideID, images, sourceURL, sourceLabel)
	_, err = b.svc.Presentations.BatchUpdate(presentation.PresentationId, &slidesapi.BatchUpdatePresentationRequest{
		Requests: requests,
	}).Do()
	if err != nil {
		return "", "", fmt.Errorf("failed to populate presentation: %w", err)
	}

	return presentation.PresentationId, PresentationURL(presentation.PresentationId), nil
}

// truncateTitle caps the presentation title, cutting on a rune boundary so
// the API never receives invalid UTF-8.
func truncateTitle(title string) string {
	if len(title) <= maxTitleLength {
		return title
	}
	cut := maxTitleLength
	for cut > 0 && !utf8.RuneStart(title[cut]) {
		cut--
	}
	return title[:cut]
}

// PresentationURL returns the canonical document URL for a presentation ID.
func PresentationURL(id string) string {
	return "https://docs.google.com/presentation/d/" + id
}

// buildRequests assembles the full batchUpdate payload: delete the default
// blank slide, then per image create a BLANK slide, the image element, the
// caption text box, and the source-link text box with its hyperlink.
func buildRequests(defaultSlideID string, images []SlideImage, sourceURL, sourceLabel string) []*slidesapi.Request {
	var requests []*slidesapi.Request

	if defaultSlideID != "" {
		requests = append(requests, &slidesapi.Request{
			DeleteObject: &slidesapi.DeleteObjectRequest{ObjectId: defaultSlideID},
		})
	}

	// Object IDs must be unique within the presentation, including any
	// elements left behind by an earlier partial batchUpdate.
	batch := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]

	for i, img := range images {
		slideID := fmt.Sprintf("slide_%s_%d", batch, i)
		imageID := fmt.Sprintf("image_%s_%d", batch, i)
		captionID := fmt.Sprintf("caption_%s_%d", batch, i)
		linkID := fmt.Sprintf("link_%s_%d", batch, i)

		requests = append(requests,
			&slidesapi.Request{
				CreateSlide: &slidesapi.CreateSlideRequest{
					ObjectId: slideID,
					SlideLayoutReference: &slidesapi.LayoutReference{
						PredefinedLayout: "BLANK",
					},
				},
			},
			&slidesapi.Request{
				CreateImage: &slidesapi.CreateImageRequest{
					ObjectId: imageID,
					Url:      img.URL,
					ElementProperties: elementBox(slideID, imageWidth, imageHeight, margin, margin),
				},
			},
			&slidesapi.Request{
				CreateShape: &slidesapi.CreateShapeRequest{
					ObjectId:          captionID,
					ShapeType:         "TEXT_BOX",
					ElementProperties: elementBox(slideID, captionWidth, captionHeight, margin, captionY),
				},
			},
			&slidesapi.Request{
				InsertText: &slidesapi.InsertTextRequest{
					ObjectId: captionID,
					Text:     strings.Join(img.CaptionLines, "\n"),
				},
			},
			&slidesapi.Request{
				CreateShape: &slidesapi.CreateShapeRequest{
					ObjectId:          linkID,
					ShapeType:         "TEXT_BOX",
					ElementProperties: elementBox(slideID, linkWidth, linkHeight, margin, linkY),
				},
			},
			&slidesapi.Request{
				InsertText: &slidesapi.InsertTextRequest{
					ObjectId: linkID,
					Text:     sourceLabel,
				},
			},
			&slidesapi.Request{
				UpdateTextStyle: &slidesapi.UpdateTextStyleRequest{
					ObjectId: linkID,
					Fields:   "link",
					Style: &slidesapi.TextStyle{
						Link: &slidesapi.Link{Url: sourceURL},
					},
					TextRange: &slidesapi.Range{Type: "ALL"},
				},
			},
		)
	}

	return requests
}

func elementBox(pageID string, width, height, x, y float64) *slidesapi.PageElementProperties {
	return &slidesapi.PageElementProperties{
		PageObjectId: pageID,
		Size: &slidesapi.Size{
			Width:  &slidesapi.Dimension{Magnitude: width, Unit: emuUnit},
			Height: &slidesapi.Dimension{Magnitude: height, Unit: emuUnit},
		},
		Transform: &slidesapi.AffineTransform{
			ScaleX:     1,
			ScaleY:     1,
			TranslateX: x,
			TranslateY: y,
			Unit:       emuUnit,
		},
	}
}

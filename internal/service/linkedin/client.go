package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/postpilot/postpilot/internal/logging"
	"github.com/postpilot/postpilot/internal/metrics"
	"github.com/postpilot/postpilot/internal/service/imagegen"
	"github.com/postpilot/postpilot/internal/upstream"
)

const (
	feedshareRecipe      = "urn:li:digitalmediaRecipe:feedshare-image"
	ugcServiceIdentifier = "urn:li:userGeneratedContent"
)

// Client publishes posts through the LinkedIn UGC API.
type Client struct {
	apiBaseURL string
	httpClient *http.Client
	logger     logging.Logger
}

// NewClient creates a publisher client.
func NewClient(logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.Nop()
	}

	return &Client{
		apiBaseURL: defaultAPIBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type registerUploadRequest struct {
	RegisterUploadRequest registerUpload `json:"registerUploadRequest"`
}

type registerUpload struct {
	Owner                string                `json:"owner"`
	Recipes              []string              `json:"recipes"`
	ServiceRelationships []serviceRelationship `json:"serviceRelationships"`
}

type serviceRelationship struct {
	RelationshipType string `json:"relationshipType"`
	Identifier       string `json:"identifier"`
}

type registerUploadResponse struct {
	Value struct {
		Asset           string `json:"asset"`
		UploadMechanism struct {
			MediaUploadHTTPRequest struct {
				UploadURL string `json:"uploadUrl"`
			} `json:"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"`
		} `json:"uploadMechanism"`
	} `json:"value"`
}

type shareRequest struct {
	Author          string          `json:"author"`
	LifecycleState  string          `json:"lifecycleState"`
	SpecificContent specificContent `json:"specificContent"`
	Visibility      shareVisibility `json:"visibility"`
}

type specificContent struct {
	ShareContent shareContent `json:"com.linkedin.ugc.ShareContent"`
}

type shareContent struct {
	ShareCommentary    textAttribute `json:"shareCommentary"`
	ShareMediaCategory string        `json:"shareMediaCategory"`
	Media              []shareMedia  `json:"media,omitempty"`
}

type textAttribute struct {
	Text string `json:"text"`
}

type shareMedia struct {
	Status string `json:"status"`
	Media  string `json:"media"`
}

type shareVisibility struct {
	MemberNetworkVisibility string `json:"com.linkedin.ugc.MemberNetworkVisibility"`
}

type shareResponse struct {
	ID string `json:"id"`
}

// Publish submits text (and optionally an image) as a public post from the
// given member. Real image results are registered and uploaded as a
// feedshare asset first. Placeholder results publish text-only: the
// placeholder reference marks a failed generation and is never attached.
func (c *Client) Publish(ctx context.Context, accessToken, authorURN, text string, img *imagegen.Result) (string, error) {
	var assetURN string
	if img != nil && !img.Placeholder() {
		urn, err := c.uploadImage(ctx, accessToken, authorURN, img)
		if err != nil {
			metrics.PublishAttempts.WithLabelValues("error").Inc()
			return "", err
		}
		assetURN = urn
	}

	postURN, err := c.createShare(ctx, accessToken, authorURN, text, assetURN)
	if err != nil {
		metrics.PublishAttempts.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.PublishAttempts.WithLabelValues("success").Inc()

	c.logger.Info("Published post to LinkedIn",
		"post_urn", postURN,
		"with_image", assetURN != "")
	return postURN, nil
}

// uploadImage runs the two-step media flow: register an upload slot for the
// member, then PUT the bytes to the returned URL. Returns the asset URN to
// reference from the share.
func (c *Client) uploadImage(ctx context.Context, accessToken, authorURN string, img *imagegen.Result) (string, error) {
	payload := registerUploadRequest{
		RegisterUploadRequest: registerUpload{
			Owner:   authorURN,
			Recipes: []string{feedshareRecipe},
			ServiceRelationships: []serviceRelationship{
				{RelationshipType: "OWNER", Identifier: ugcServiceIdentifier},
			},
		},
	}

	body, status, err := c.postJSON(ctx, c.apiBaseURL+"/v2/assets?action=registerUpload", accessToken, payload)
	if err != nil {
		return "", fmt.Errorf("registering upload: %w", err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", upstream.FromResponse("linkedin", status, body)
	}

	var registered registerUploadResponse
	if err := json.Unmarshal(body, &registered); err != nil {
		return "", fmt.Errorf("decoding register response: %w", err)
	}
	uploadURL := registered.Value.UploadMechanism.MediaUploadHTTPRequest.UploadURL
	if uploadURL == "" || registered.Value.Asset == "" {
		return "", errors.New("register response missing upload target")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(img.Data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", img.MIME)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", upstream.FromResponse("linkedin", resp.StatusCode, respBody)
	}

	c.logger.Debug("Uploaded media asset", "asset", registered.Value.Asset, "bytes", len(img.Data))
	return registered.Value.Asset, nil
}

// createShare posts the UGC share and returns the new post URN.
func (c *Client) createShare(ctx context.Context, accessToken, authorURN, text, assetURN string) (string, error) {
	share := shareRequest{
		Author:         authorURN,
		LifecycleState: "PUBLISHED",
		SpecificContent: specificContent{
			ShareContent: shareContent{
				ShareCommentary:    textAttribute{Text: text},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: shareVisibility{MemberNetworkVisibility: "PUBLIC"},
	}
	if assetURN != "" {
		share.SpecificContent.ShareContent.ShareMediaCategory = "IMAGE"
		share.SpecificContent.ShareContent.Media = []shareMedia{
			{Status: "READY", Media: assetURN},
		}
	}

	body, status, err := c.postJSON(ctx, c.apiBaseURL+"/v2/ugcPosts", accessToken, share)
	if err != nil {
		return "", fmt.Errorf("creating share: %w", err)
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return "", upstream.FromResponse("linkedin", status, body)
	}

	var created shareResponse
	if err := json.Unmarshal(body, &created); err != nil || created.ID == "" {
		return "", errors.New("share response missing post id")
	}
	return created.ID, nil
}

// postJSON sends an authenticated JSON POST and returns the body and status.
func (c *Client) postJSON(ctx context.Context, url, accessToken string, payload interface{}) ([]byte, int, error) {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTimeout bounds individual control-plane requests.
	DefaultTimeout = 15 * time.Second
	// inventoryTTL is how long cached inventory snapshots stay fresh.
	inventoryTTL = 10 * time.Second
)

// Client talks to the Quantix control plane over HTTP/JSON.
type Client struct {
	baseURL string
	http    *http.Client

	mu        sync.Mutex
	inventory *cacheEntry[*Inventory]
}

// New creates a client for the given base URL, e.g. "https://qvdc.local:8443".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// NewWithHTTPClient creates a client with a custom http.Client (used in tests).
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

// BaseURL returns the base URL the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// getJSON issues a GET request and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.doJSON(req, out)
}

// postJSON issues a POST request with a JSON body and decodes the response.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		buf = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, out)
}

// doJSON executes the request, maps failure responses to *APIError, and
// decodes a 2xx body into out when out is non-nil.
func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	if out == nil {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// newAPIError builds an *APIError from a failure response, extracting the
// message from a JSON-shaped body when possible.
func newAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	if resp.StatusCode == http.StatusNotFound {
		apiErr.Err = ErrNotFound
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil {
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil {
			if payload.Error != "" {
				apiErr.Message = payload.Error
			} else if payload.Message != "" {
				apiErr.Message = payload.Message
			}
		}
	}

	return apiErr
}

// ListVMs returns all virtual machines.
func (c *Client) ListVMs(ctx context.Context) ([]VM, error) {
	var out struct {
		VMs []VM `json:"vms"`
	}
	if err := c.getJSON(ctx, "/api/v1/vms", &out); err != nil {
		return nil, fmt.Errorf("failed to list VMs: %w", err)
	}
	return out.VMs, nil
}

// GetVM returns a single virtual machine by ID.
func (c *Client) GetVM(ctx context.Context, id string) (*VM, error) {
	var vm VM
	if err := c.getJSON(ctx, "/api/v1/vms/"+url.PathEscape(id), &vm); err != nil {
		return nil, fmt.Errorf("failed to get VM %s: %w", id, err)
	}
	return &vm, nil
}

// CreateVM submits a creation request and returns the new VM.
// The request is a single atomic creation; a failure leaves nothing behind.
func (c *Client) CreateVM(ctx context.Context, req CreateVMRequest) (*VM, error) {
	var vm VM
	if err := c.postJSON(ctx, "/api/v1/vms", req, &vm); err != nil {
		return nil, fmt.Errorf("failed to create VM: %w", err)
	}
	return &vm, nil
}

// PowerAction is a VM lifecycle action.
type PowerAction string

const (
	PowerStart PowerAction = "start"
	PowerStop  PowerAction = "stop"
)

// PowerVM starts or stops a virtual machine.
func (c *Client) PowerVM(ctx context.Context, id string, action PowerAction) error {
	body := map[string]string{"action": string(action)}
	path := "/api/v1/vms/" + url.PathEscape(id) + "/power"
	if err := c.postJSON(ctx, path, body, nil); err != nil {
		return fmt.Errorf("failed to %s VM %s: %w", action, id, err)
	}
	return nil
}

// GetVMMetrics fetches and normalizes runtime metrics for a VM.
func (c *Client) GetVMMetrics(ctx context.Context, id string) (*VMMetrics, error) {
	var raw map[string]json.RawMessage
	path := "/api/v1/vms/" + url.PathEscape(id) + "/metrics"
	if err := c.getJSON(ctx, path, &raw); err != nil {
		return nil, fmt.Errorf("failed to get metrics for VM %s: %w", id, err)
	}
	m := normalizeMetrics(raw)
	return &m, nil
}

// ListNodes returns the host inventory.
func (c *Client) ListNodes(ctx context.Context) ([]Node, error) {
	var out struct {
		Nodes []Node `json:"nodes"`
	}
	if err := c.getJSON(ctx, "/api/v1/nodes", &out); err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	return out.Nodes, nil
}

// ListClusters returns the cluster inventory.
func (c *Client) ListClusters(ctx context.Context) ([]Cluster, error) {
	var out struct {
		Clusters []Cluster `json:"clusters"`
	}
	if err := c.getJSON(ctx, "/api/v1/clusters", &out); err != nil {
		return nil, fmt.Errorf("failed to list clusters: %w", err)
	}
	return out.Clusters, nil
}

// ListNetworks returns the virtual networks.
func (c *Client) ListNetworks(ctx context.Context) ([]Network, error) {
	var out struct {
		Networks []Network `json:"networks"`
	}
	if err := c.getJSON(ctx, "/api/v1/networks", &out); err != nil {
		return nil, fmt.Errorf("failed to list networks: %w", err)
	}
	return out.Networks, nil
}

// ListStoragePools returns the storage pool inventory.
func (c *Client) ListStoragePools(ctx context.Context) ([]StoragePool, error) {
	var out struct {
		Pools []StoragePool `json:"pools"`
	}
	if err := c.getJSON(ctx, "/api/v1/storage-pools", &out); err != nil {
		return nil, fmt.Errorf("failed to list storage pools: %w", err)
	}
	return out.Pools, nil
}

// ListImages returns the cloud image catalog with readiness state.
func (c *Client) ListImages(ctx context.Context) ([]CloudImage, error) {
	var out struct {
		Images []CloudImage `json:"images"`
	}
	if err := c.getJSON(ctx, "/api/v1/images", &out); err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return out.Images, nil
}

// StartImageDownload asks the control plane to begin downloading an image.
func (c *Client) StartImageDownload(ctx context.Context, imageID string) error {
	path := "/api/v1/images/" + url.PathEscape(imageID) + "/download"
	if err := c.postJSON(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("failed to start download of image %s: %w", imageID, err)
	}
	return nil
}

// ListISOs returns the remote ISO list merged with the built-in fallback
// catalog. Remote entries win on ID collisions.
func (c *Client) ListISOs(ctx context.Context) ([]ISO, error) {
	var out struct {
		ISOs []ISO `json:"isos"`
	}
	if err := c.getJSON(ctx, "/api/v1/isos", &out); err != nil {
		return nil, fmt.Errorf("failed to list ISOs: %w", err)
	}
	return mergeISOCatalog(out.ISOs), nil
}

// ListTemplates returns the OVA template catalog.
func (c *Client) ListTemplates(ctx context.Context) ([]OVATemplate, error) {
	var out struct {
		Templates []OVATemplate `json:"templates"`
	}
	if err := c.getJSON(ctx, "/api/v1/templates", &out); err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return out.Templates, nil
}

// ListVolumes returns the detached volumes available for attachment.
func (c *Client) ListVolumes(ctx context.Context) ([]Volume, error) {
	var out struct {
		Volumes []Volume `json:"volumes"`
	}
	if err := c.getJSON(ctx, "/api/v1/volumes", &out); err != nil {
		return nil, fmt.Errorf("failed to list volumes: %w", err)
	}
	return out.Volumes, nil
}

// FetchInventory loads every read model the wizard needs, fetching the
// collections concurrently. Results are cached briefly so navigating between
// wizard steps does not hammer the control plane.
func (c *Client) FetchInventory(ctx context.Context) (*Inventory, error) {
	c.mu.Lock()
	if c.inventory.valid(time.Now()) {
		inv := c.inventory.value
		c.mu.Unlock()
		return inv, nil
	}
	c.mu.Unlock()

	inv := &Inventory{}
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		nodes, err := c.ListNodes(ctx)
		inv.Nodes = nodes
		return err
	})
	eg.Go(func() error {
		clusters, err := c.ListClusters(ctx)
		inv.Clusters = clusters
		return err
	})
	eg.Go(func() error {
		networks, err := c.ListNetworks(ctx)
		inv.Networks = networks
		return err
	})
	eg.Go(func() error {
		pools, err := c.ListStoragePools(ctx)
		inv.Pools = pools
		return err
	})
	eg.Go(func() error {
		images, err := c.ListImages(ctx)
		inv.Images = images
		return err
	})
	eg.Go(func() error {
		isos, err := c.ListISOs(ctx)
		inv.ISOs = isos
		return err
	})
	eg.Go(func() error {
		templates, err := c.ListTemplates(ctx)
		inv.Templates = templates
		return err
	})
	eg.Go(func() error {
		volumes, err := c.ListVolumes(ctx)
		inv.Volumes = volumes
		return err
	})

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch inventory: %w", err)
	}

	c.mu.Lock()
	c.inventory = newCacheEntry(inv, inventoryTTL)
	c.mu.Unlock()

	return inv, nil
}

// InvalidateInventory drops the cached inventory snapshot.
func (c *Client) InvalidateInventory() {
	c.mu.Lock()
	c.inventory = nil
	c.mu.Unlock()
}

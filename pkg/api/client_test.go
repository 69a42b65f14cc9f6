package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListVMs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/vms", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"vms": []VM{
				{ID: "vm-1", Name: "web-01", State: VMStateRunning},
				{ID: "vm-2", Name: "db-01", State: VMStateStopped},
			},
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	vms, err := client.ListVMs(context.Background())
	require.NoError(t, err)

	require.Len(t, vms, 2)
	assert.Equal(t, "web-01", vms[0].Name)
	assert.Equal(t, VMStateStopped, vms[1].State)
}

func TestClient_GetVM_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "vm not found"})
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.GetVM(context.Background(), "missing")
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrNotFound)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "vm not found", apiErr.Message)
}

func TestClient_ErrorMessageFromMessageField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "name already in use"})
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.CreateVM(context.Background(), CreateVMRequest{Name: "dup"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "name already in use", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "name already in use")
}

func TestClient_ErrorWithNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>Internal Server Error</html>"))
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.ListVMs(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Empty(t, apiErr.Message)
	assert.Equal(t, "control plane returned 500", apiErr.Error())
}

func TestClient_CreateVM(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/vms", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req CreateVMRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "web-01", req.Name)
		assert.Equal(t, 4, req.Spec.CPU.Cores)

		json.NewEncoder(w).Encode(VM{ID: "vm-new", Name: req.Name, State: VMStatePending})
	}))
	defer srv.Close()

	client := New(srv.URL)
	vm, err := client.CreateVM(context.Background(), CreateVMRequest{
		Name:      "web-01",
		ProjectID: "default",
		Spec: VMSpec{
			CPU:    CPUConfig{Cores: 4, Sockets: 1},
			Memory: MemoryConfig{SizeMiB: 4096},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "vm-new", vm.ID)
	assert.Equal(t, VMStatePending, vm.State)
}

func TestClient_PowerVM(t *testing.T) {
	var gotAction string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/vms/vm-1/power", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotAction = body["action"]
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(srv.URL)
	err := client.PowerVM(context.Background(), "vm-1", PowerStop)
	require.NoError(t, err)
	assert.Equal(t, "stop", gotAction)
}

func TestClient_GetVMMetrics_Normalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Legacy field names
		json.NewEncoder(w).Encode(map[string]any{
			"cpuPercent":   42.5,
			"memUsedBytes": 1073741824,
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	metrics, err := client.GetVMMetrics(context.Background(), "vm-1")
	require.NoError(t, err)

	assert.Equal(t, 42.5, metrics.CPUPercent)
	assert.Equal(t, int64(1073741824), metrics.MemoryUsedBytes)
}

func TestClient_ListISOs_MergesFallbackCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"isos": []ISO{
				{ID: "ubuntu-24.04-live-server", Name: "Ubuntu 24.04 (local)", Path: "/isos/ubuntu-24.04.iso"},
				{ID: "custom-appliance", Name: "Custom Appliance"},
			},
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	isos, err := client.ListISOs(context.Background())
	require.NoError(t, err)

	byID := make(map[string]ISO, len(isos))
	for _, iso := range isos {
		byID[iso.ID] = iso
	}

	// Remote entry wins over the fallback with the same ID
	assert.Equal(t, "Ubuntu 24.04 (local)", byID["ubuntu-24.04-live-server"].Name)
	assert.Contains(t, byID, "custom-appliance")
	// Fallback-only entries fill in the rest
	assert.Contains(t, byID, "debian-12-netinst")
}

func inventoryTestServer(t *testing.T, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch r.URL.Path {
		case "/api/v1/nodes":
			json.NewEncoder(w).Encode(map[string]any{"nodes": []Node{{ID: "node-1", Hostname: "qvdc-host-1"}}})
		case "/api/v1/clusters":
			json.NewEncoder(w).Encode(map[string]any{"clusters": []Cluster{{ID: "cl-1", Name: "default"}}})
		case "/api/v1/networks":
			json.NewEncoder(w).Encode(map[string]any{"networks": []Network{{ID: "net-1", Name: "vm-network"}}})
		case "/api/v1/storage-pools":
			json.NewEncoder(w).Encode(map[string]any{"pools": []StoragePool{{ID: "pool-1", Name: "local-ssd"}}})
		case "/api/v1/images":
			json.NewEncoder(w).Encode(map[string]any{"images": []CloudImage{{ID: "img-1", Status: ImageStatusReady, Path: "/images/a.qcow2"}}})
		case "/api/v1/isos":
			json.NewEncoder(w).Encode(map[string]any{"isos": []ISO{}})
		case "/api/v1/templates":
			json.NewEncoder(w).Encode(map[string]any{"templates": []OVATemplate{{ID: "tpl-1", Name: "Base Template"}}})
		case "/api/v1/volumes":
			json.NewEncoder(w).Encode(map[string]any{"volumes": []Volume{{ID: "vol-1", Name: "data-old", PoolID: "pool-1", SizeGiB: 40}}})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestClient_FetchInventory(t *testing.T) {
	var requests atomic.Int32
	srv := inventoryTestServer(t, &requests)
	defer srv.Close()

	client := New(srv.URL)
	inv, err := client.FetchInventory(context.Background())
	require.NoError(t, err)

	assert.Len(t, inv.Nodes, 1)
	assert.Len(t, inv.Clusters, 1)
	assert.Len(t, inv.Networks, 1)
	assert.Len(t, inv.Pools, 1)
	assert.Len(t, inv.Images, 1)
	assert.Len(t, inv.Templates, 1)
	// Fallback catalog fills in the empty remote ISO list
	assert.NotEmpty(t, inv.ISOs)

	require.Len(t, inv.Volumes, 1)
	assert.Equal(t, "vol-1", inv.Volumes[0].ID)
	assert.NotNil(t, inv.FindVolume("vol-1"))
	assert.Nil(t, inv.FindVolume("vol-gone"))
}

func TestClient_FetchInventory_Cached(t *testing.T) {
	var requests atomic.Int32
	srv := inventoryTestServer(t, &requests)
	defer srv.Close()

	client := New(srv.URL)

	first, err := client.FetchInventory(context.Background())
	require.NoError(t, err)
	after := requests.Load()

	second, err := client.FetchInventory(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, after, requests.Load())
}

func TestClient_InvalidateInventory(t *testing.T) {
	var requests atomic.Int32
	srv := inventoryTestServer(t, &requests)
	defer srv.Close()

	client := New(srv.URL)

	_, err := client.FetchInventory(context.Background())
	require.NoError(t, err)
	after := requests.Load()

	client.InvalidateInventory()

	_, err = client.FetchInventory(context.Background())
	require.NoError(t, err)
	assert.Greater(t, requests.Load(), after)
}

func TestClient_FetchInventory_PartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/storage-pools" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.FetchInventory(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestClient_BaseURLTrimsTrailingSlash(t *testing.T) {
	client := New("https://qvdc.local:8443/")
	assert.Equal(t, "https://qvdc.local:8443", client.BaseURL())
}

func TestAPIError_Unwrap(t *testing.T) {
	err := &APIError{Status: 404, Err: ErrNotFound}
	assert.True(t, errors.Is(err, ErrNotFound))
}

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Guest-agent endpoints are deliberately forgiving: an unreachable or
// non-JSON response means "agent unavailable", not an error. Old hosts
// without the agent API return HTML error pages; those must not surface
// as failures in the UI.

// AgentPing checks guest-agent connectivity for a VM.
func (c *Client) AgentPing(ctx context.Context, vmID string) AgentStatus {
	return c.agentGet(ctx, "/api/vms/"+url.PathEscape(vmID)+"/agent/ping")
}

// QemuAgentPing checks base QEMU guest-agent connectivity for a VM.
func (c *Client) QemuAgentPing(ctx context.Context, vmID string) AgentStatus {
	return c.agentGet(ctx, "/api/vms/"+url.PathEscape(vmID)+"/qemu-agent/ping")
}

// AgentUpdate asks the in-guest agent to update itself.
func (c *Client) AgentUpdate(ctx context.Context, vmID string) AgentStatus {
	return c.agentPost(ctx, "/api/vms/"+url.PathEscape(vmID)+"/agent/update")
}

// AgentInstall triggers agent installation inside the guest.
func (c *Client) AgentInstall(ctx context.Context, vmID string) AgentStatus {
	return c.agentPost(ctx, "/api/vms/"+url.PathEscape(vmID)+"/agent/install")
}

// AgentLogs fetches the last n lines of the in-guest agent log.
// Returns an empty slice when the agent is unavailable.
func (c *Client) AgentLogs(ctx context.Context, vmID string, lines int) []string {
	path := "/api/vms/" + url.PathEscape(vmID) + "/agent/logs?lines=" + strconv.Itoa(lines)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil
	}

	var out struct {
		Lines []string `json:"lines"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil
	}
	return out.Lines
}

func (c *Client) agentGet(ctx context.Context, path string) AgentStatus {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return AgentStatus{Reason: fmt.Sprintf("failed to create request: %v", err)}
	}
	return c.agentDo(req)
}

func (c *Client) agentPost(ctx context.Context, path string) AgentStatus {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return AgentStatus{Reason: fmt.Sprintf("failed to create request: %v", err)}
	}
	return c.agentDo(req)
}

// agentDo executes an agent request, downgrading every failure mode into an
// AgentStatus with Connected=false.
func (c *Client) agentDo(req *http.Request) AgentStatus {
	resp, err := c.http.Do(req)
	if err != nil {
		return AgentStatus{Reason: "agent not reachable"}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return AgentStatus{Reason: fmt.Sprintf("agent request returned %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return AgentStatus{Reason: "failed to read agent response"}
	}

	var payload struct {
		Connected bool   `json:"connected"`
		Success   bool   `json:"success"`
		Version   string `json:"version"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		// A non-JSON body means the host predates the agent API.
		return AgentStatus{Reason: "agent API not available"}
	}

	return AgentStatus{
		Connected: payload.Connected || payload.Success,
		Version:   payload.Version,
	}
}

package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/ports"
)

// ErpGateway implements the Gateway port against the ERP's REST surface.
// The request/response shapes here are a compatibility contract with the
// existing backend and are isolated to this file.
type ErpGateway struct {
	client *Client
}

func NewErpGateway(client *Client) *ErpGateway {
	return &ErpGateway{client: client}
}

type wireRow struct {
	SysRowID string         `json:"sysRowID"`
	Revision int64          `json:"revision"`
	Fields   map[string]any `json:"fields"`
}

func (r wireRow) toPort() ports.Row {
	return ports.Row{
		ID:     domain.RecordID{Identity: r.SysRowID, Revision: r.Revision},
		Fields: r.Fields,
	}
}

func (g *ErpGateway) AllocateLastSequence(ctx context.Context, period string) (int, error) {
	var out struct {
		Last int `json:"last"`
	}
	err := g.client.doJSON(ctx, http.MethodGet, "/sequence/"+url.PathEscape(period), nil, nil, &out)
	if err != nil {
		return 0, fmt.Errorf("allocate last sequence %s: %w", period, err)
	}
	return out.Last, nil
}

func (g *ErpGateway) CreateRecord(ctx context.Context, table string, fields map[string]any) (ports.Row, error) {
	var out wireRow
	body := map[string]any{"fields": fields}
	if err := g.client.doJSON(ctx, http.MethodPost, "/ud/"+url.PathEscape(table), nil, body, &out); err != nil {
		return ports.Row{}, fmt.Errorf("create record in %s: %w", table, err)
	}
	return out.toPort(), nil
}

func (g *ErpGateway) UpdateRecord(ctx context.Context, table string, id domain.RecordID, fields map[string]any) (domain.RecordID, error) {
	var out wireRow
	body := map[string]any{"revision": id.Revision, "fields": fields}
	path := "/ud/" + url.PathEscape(table) + "/" + url.PathEscape(id.Identity)
	if err := g.client.doJSON(ctx, http.MethodPut, path, nil, body, &out); err != nil {
		return domain.RecordID{}, fmt.Errorf("update record %s in %s: %w", id.Identity, table, err)
	}
	return domain.RecordID{Identity: out.SysRowID, Revision: out.Revision}, nil
}

func (g *ErpGateway) DeleteRecord(ctx context.Context, table string, id domain.RecordID) error {
	query := url.Values{"revision": {fmt.Sprintf("%d", id.Revision)}}
	path := "/ud/" + url.PathEscape(table) + "/" + url.PathEscape(id.Identity)
	if err := g.client.doJSON(ctx, http.MethodDelete, path, query, nil, nil); err != nil {
		return fmt.Errorf("delete record %s in %s: %w", id.Identity, table, err)
	}
	return nil
}

func (g *ErpGateway) BatchApply(ctx context.Context, table string, ops []ports.RecordOp) ([]ports.OpResult, error) {
	type wireOp struct {
		Op       string         `json:"op"`
		SysRowID string         `json:"sysRowID,omitempty"`
		Revision int64          `json:"revision,omitempty"`
		Fields   map[string]any `json:"fields,omitempty"`
	}

	body := struct {
		Ops []wireOp `json:"ops"`
	}{Ops: make([]wireOp, 0, len(ops))}

	// Submitted order is preserved: the backend applies rows as given,
	// and deletes must free composite keys before creates reuse them.
	for _, op := range ops {
		body.Ops = append(body.Ops, wireOp{
			Op:       string(op.Kind),
			SysRowID: op.ID.Identity,
			Revision: op.ID.Revision,
			Fields:   op.Fields,
		})
	}

	var out struct {
		Results []struct {
			SysRowID string `json:"sysRowID"`
			Revision int64  `json:"revision"`
			Status   int    `json:"status"`
			Error    string `json:"error"`
		} `json:"results"`
	}
	path := "/ud/" + url.PathEscape(table) + "/batch"
	if err := g.client.doJSON(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, fmt.Errorf("batch apply to %s: %w", table, err)
	}

	results := make([]ports.OpResult, 0, len(out.Results))
	for _, r := range out.Results {
		res := ports.OpResult{ID: domain.RecordID{Identity: r.SysRowID, Revision: r.Revision}}
		if r.Error != "" {
			res.Err = classifyStatus(r.Status, r.Error)
		}
		results = append(results, res)
	}
	return results, nil
}

func (g *ErpGateway) Lookup(ctx context.Context, table string, filter map[string]string) ([]ports.Row, error) {
	query := url.Values{}
	for k, v := range filter {
		query.Set(k, v)
	}

	var out struct {
		Rows []wireRow `json:"rows"`
	}
	if err := g.client.doJSON(ctx, http.MethodGet, "/ud/"+url.PathEscape(table), query, nil, &out); err != nil {
		return nil, fmt.Errorf("lookup %s: %w", table, err)
	}

	rows := make([]ports.Row, 0, len(out.Rows))
	for _, r := range out.Rows {
		rows = append(rows, r.toPort())
	}
	return rows, nil
}

func (g *ErpGateway) GUIDExists(ctx context.Context, guid string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	if err := g.client.doJSON(ctx, http.MethodGet, "/scanlog/guid/"+url.PathEscape(guid), nil, nil, &out); err != nil {
		return false, fmt.Errorf("check guid %s: %w", guid, err)
	}
	return out.Exists, nil
}

type wirePosting struct {
	PackNum string `json:"packNum"`
	From    string `json:"from"`
	To      string `json:"to"`
	Date    string `json:"date"`
}

func (g *ErpGateway) PostTransfer(ctx context.Context, req ports.TransferRequest) (string, error) {
	return g.post(ctx, "/postings/transfer", req)
}

func (g *ErpGateway) PostReverseTransfer(ctx context.Context, req ports.TransferRequest) (string, error) {
	return g.post(ctx, "/postings/reverse-transfer", req)
}

func (g *ErpGateway) post(ctx context.Context, path string, req ports.TransferRequest) (string, error) {
	body := wirePosting{
		PackNum: req.PackNum,
		From:    req.From,
		To:      req.To,
		Date:    req.Date.Format(time.RFC3339),
	}
	var out struct {
		Message string `json:"message"`
	}
	if err := g.client.doJSON(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return "", fmt.Errorf("posting %s for %s: %w", path, req.PackNum, err)
	}
	return out.Message, nil
}

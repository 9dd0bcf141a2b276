package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/api/dto"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/services"
)

type ShipmentHandler struct {
	Sessions *SessionRegistry
}

// Create allocates a new pack number and opens an editing session over
// the freshly created header.
func (h *ShipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateShipmentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s := h.Sessions.New()
	seed := &domain.ShipmentHeader{
		ShipFrom: req.ShipFrom,
		ShipTo:   req.ShipTo,
		ShipDate: req.ShipDate,
		Comment:  req.Comment,
		IsTgp:    req.IsTgp,
	}

	header, err := s.Create(r.Context(), time.Now(), seed)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.Sessions.Adopt(header.PackNum, s)
	writeJSON(w, r, http.StatusCreated, shipmentResponse(s))
}

func (h *ShipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, shipmentResponse(s))
}

// Save applies header and line edits, then reconciles the working set
// against the backend. A partially committed save answers 207 with the
// failed line numbers; the refetched state is available via Get.
func (h *ShipmentHandler) Save(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.SaveShipmentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.EditHeader(services.HeaderEdit{
		ShipFrom:   req.Header.ShipFrom,
		ShipTo:     req.Header.ShipTo,
		Comment:    req.Header.Comment,
		RcvComment: req.Header.RcvComment,
		IsTgp:      req.Header.IsTgp,
		ShipDate:   req.Header.ShipDate,
	}); err != nil {
		writeDomainError(w, r, err)
		return
	}

	for _, le := range req.Lines {
		edit, err := lineEdit(le)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		if err := s.EditLine(edit); err != nil {
			writeDomainError(w, r, err)
			return
		}
	}

	err := s.Save(r.Context())
	var partial *domain.PartialBatchError
	if errors.As(err, &partial) {
		failed := make([]int, 0, len(partial.Failures))
		for _, f := range partial.Failures {
			failed = append(failed, f.LineNum)
		}
		writeJSON(w, r, http.StatusMultiStatus, dto.SaveWarning{
			Warning:     partial.Error(),
			FailedLines: failed,
		})
		return
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, shipmentResponse(s))
}

func (h *ShipmentHandler) Scan(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.ScanRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ev, err := s.IngestScan(r.Context(), req.Payload, time.Now())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, eventResponse(ev))
}

func (h *ShipmentHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.ManualLineRequest
	if !decodeBody(w, r, &req) {
		return
	}

	l, err := s.AddManualLine(r.Context(), req.PartNum, req.PartDesc, req.UOM)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, lineResponse(l))
}

func (h *ShipmentHandler) DeleteLine(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	num, err := strconv.Atoi(r.PathValue("line"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid line number")
		return
	}

	if err := s.RemoveLine(num); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShipmentHandler) Ship(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.RequestShip(r.Context(), time.Now()); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, shipmentResponse(s))
}

func (h *ShipmentHandler) Return(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.RequestReturn(r.Context(), time.Now()); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, shipmentResponse(s))
}

func (h *ShipmentHandler) Receive(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.ReceiveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	date := time.Now()
	if req.ReceiptDate != nil {
		date = *req.ReceiptDate
	}

	if err := s.Receive(r.Context(), date, req.RcvComment); err != nil {
		writeDomainError(w, r, err)
		return
	}

	// Received shipments are terminal; the editing session ends here.
	h.Sessions.Drop(r.PathValue("pack"))
	writeJSON(w, r, http.StatusOK, shipmentResponse(s))
}

func (h *ShipmentHandler) BinOptions(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	num, err := strconv.Atoi(r.PathValue("line"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid line number")
		return
	}

	opts, err := s.BinOptionsForLine(r.Context(), num, r.URL.Query().Get("warehouse"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]dto.OptionResponse, 0, len(opts))
	for _, o := range opts {
		out = append(out, dto.OptionResponse{
			Code:      o.Code,
			Desc:      o.Desc,
			QtyOnHand: o.QtyOnHand.String(),
			Current:   o.Current,
		})
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *ShipmentHandler) session(w http.ResponseWriter, r *http.Request) (*services.EditSession, bool) {
	pack := r.PathValue("pack")
	if pack == "" {
		writeError(w, r, http.StatusBadRequest, "pack number is required")
		return nil, false
	}

	s, err := h.Sessions.Get(r.Context(), pack)
	if err != nil {
		writeError(w, r, http.StatusNotFound, err.Error())
		return nil, false
	}
	return s, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

func lineEdit(req dto.LineEditRequest) (services.LineEdit, error) {
	edit := services.LineEdit{
		LineNum:    req.LineNum,
		Comment:    req.Comment,
		RcvComment: req.RcvComment,
		BinTo:      req.BinTo,
		BinNum:     req.BinNum,
	}

	parse := func(field string, s *string) (*decimal.Decimal, error) {
		if s == nil {
			return nil, nil
		}
		d, err := decimal.NewFromString(*s)
		if err != nil {
			return nil, &domain.ValidationError{Field: field, Reason: "not a number"}
		}
		return &d, nil
	}

	var err error
	if edit.Qty, err = parse("qty", req.Qty); err != nil {
		return edit, err
	}
	if edit.QtyPack, err = parse("qty_pack", req.QtyPack); err != nil {
		return edit, err
	}
	if edit.QtyHitungPcs, err = parse("qty_hitung_pcs", req.QtyHitungPcs); err != nil {
		return edit, err
	}
	return edit, nil
}

func shipmentResponse(s *services.EditSession) dto.ShipmentResponse {
	h := s.Header()
	res := dto.ShipmentResponse{
		PackNum:        h.PackNum,
		Status:         string(h.Status()),
		ShipFrom:       h.ShipFrom,
		ShipTo:         h.ShipTo,
		ShipDate:       h.ShipDate,
		ActualShipDate: h.ActualShipDate,
		ReceiptDate:    h.ReceiptDate,
		Comment:        h.Comment,
		RcvComment:     h.RcvComment,
		IsTgp:          h.IsTgp,
		IsShipped:      h.IsShipped,
		IsReceived:     h.IsReceived,
		Lines:          []dto.LineResponse{},
		Events:         []dto.ScanEventResponse{},
	}

	for _, l := range s.Lines() {
		res.Lines = append(res.Lines, lineResponse(l))
	}
	for _, ev := range s.Events() {
		res.Events = append(res.Events, eventResponse(ev))
	}
	return res
}

func lineResponse(l *domain.ShipmentLine) dto.LineResponse {
	return dto.LineResponse{
		LineNum:       l.LineNum,
		PartNum:       l.PartNum,
		PartDesc:      l.PartDesc,
		UOM:           l.UOM,
		WarehouseCode: l.WarehouseCode,
		BinNum:        l.BinNum,
		LotNum:        l.LotNum,
		WhTo:          l.WhTo,
		BinTo:         l.BinTo,
		Qty:           l.Qty.String(),
		QtyPack:       l.QtyPack.String(),
		QtyHitungPcs:  l.QtyHitungPcs.String(),
		Comment:       l.Comment,
		RcvComment:    l.RcvComment,
		Source:        string(l.Source),
		IsNew:         l.IsNew(),
	}
}

func eventResponse(ev *domain.ScanEvent) dto.ScanEventResponse {
	return dto.ScanEventResponse{
		GUID:      ev.GUID,
		PartNum:   ev.PartNum,
		LotNum:    ev.LotNum,
		Qty:       ev.Qty.String(),
		Timestamp: ev.Timestamp,
		LineNum:   ev.LineNum,
		IsNew:     ev.IsNew,
	}
}

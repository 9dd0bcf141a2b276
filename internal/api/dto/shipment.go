package dto

import "time"

type CreateShipmentRequest struct {
	ShipFrom string     `json:"ship_from"`
	ShipTo   string     `json:"ship_to"`
	ShipDate *time.Time `json:"ship_date"`
	Comment  string     `json:"comment"`
	IsTgp    bool       `json:"is_tgp"`
}

type HeaderEditRequest struct {
	ShipFrom   *string    `json:"ship_from"`
	ShipTo     *string    `json:"ship_to"`
	Comment    *string    `json:"comment"`
	RcvComment *string    `json:"rcv_comment"`
	IsTgp      *bool      `json:"is_tgp"`
	ShipDate   *time.Time `json:"ship_date"`
}

type LineEditRequest struct {
	LineNum      int     `json:"line_num"`
	Qty          *string `json:"qty"`
	QtyPack      *string `json:"qty_pack"`
	QtyHitungPcs *string `json:"qty_hitung_pcs"`
	Comment      *string `json:"comment"`
	RcvComment   *string `json:"rcv_comment"`
	BinTo        *string `json:"bin_to"`
	BinNum       *string `json:"bin_num"`
}

// SaveShipmentRequest applies header and line edits, then persists the
// working set.
type SaveShipmentRequest struct {
	Header HeaderEditRequest `json:"header"`
	Lines  []LineEditRequest `json:"lines"`
}

type ScanRequest struct {
	Payload string `json:"payload"`
}

type ManualLineRequest struct {
	PartNum  string `json:"part_num"`
	PartDesc string `json:"part_desc"`
	UOM      string `json:"uom"`
}

type ReceiveRequest struct {
	ReceiptDate *time.Time `json:"receipt_date"`
	RcvComment  string     `json:"rcv_comment"`
}

type ScanEventResponse struct {
	GUID      string    `json:"guid"`
	PartNum   string    `json:"part_num"`
	LotNum    string    `json:"lot_num"`
	Qty       string    `json:"qty"`
	Timestamp time.Time `json:"timestamp"`
	LineNum   int       `json:"line_num"`
	IsNew     bool      `json:"is_new"`
}

type LineResponse struct {
	LineNum       int    `json:"line_num"`
	PartNum       string `json:"part_num"`
	PartDesc      string `json:"part_desc"`
	UOM           string `json:"uom"`
	WarehouseCode string `json:"warehouse_code"`
	BinNum        string `json:"bin_num"`
	LotNum        string `json:"lot_num"`
	WhTo          string `json:"wh_to"`
	BinTo         string `json:"bin_to"`
	Qty           string `json:"qty"`
	QtyPack       string `json:"qty_pack"`
	QtyHitungPcs  string `json:"qty_hitung_pcs"`
	Comment       string `json:"comment"`
	RcvComment    string `json:"rcv_comment"`
	Source        string `json:"source"`
	IsNew         bool   `json:"is_new"`
}

type ShipmentResponse struct {
	PackNum        string              `json:"pack_num"`
	Status         string              `json:"status"`
	ShipFrom       string              `json:"ship_from"`
	ShipTo         string              `json:"ship_to"`
	ShipDate       *time.Time          `json:"ship_date"`
	ActualShipDate *time.Time          `json:"actual_ship_date"`
	ReceiptDate    *time.Time          `json:"receipt_date"`
	Comment        string              `json:"comment"`
	RcvComment     string              `json:"rcv_comment"`
	IsTgp          bool                `json:"is_tgp"`
	IsShipped      bool                `json:"is_shipped"`
	IsReceived     bool                `json:"is_received"`
	Lines          []LineResponse      `json:"lines"`
	Events         []ScanEventResponse `json:"events"`
}

type OptionResponse struct {
	Code      string `json:"code"`
	Desc      string `json:"desc"`
	QtyOnHand string `json:"qty_on_hand"`
	Current   bool   `json:"current"`
}

// SaveWarning reports the lines that failed in a partially committed
// save; the returned shipment body is the refetched ground truth.
type SaveWarning struct {
	Warning     string `json:"warning"`
	FailedLines []int  `json:"failed_lines"`
}

package domain

import "time"

// DatasetHeader is the required first line of every invoice CSV export.
const DatasetHeader = "invoice_id,customer,amount,paid_at,status"

// Dataset is one persisted invoice export: the parsed rows plus the raw text
// they came from. RawText is kept byte-for-byte because it is the fingerprint
// input for requests that analyze the persisted dataset.
type Dataset struct {
	ID        string          `json:"id"`
	RawText   string          `json:"-"`
	Records   []InvoiceRecord `json:"records"`
	CreatedAt time.Time       `json:"created_at"`
}

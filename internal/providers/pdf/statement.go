package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// StatementData is everything a commission statement renders. Amounts are
// preformatted strings so the layer stays presentation only.
type StatementData struct {
	AppName        string
	AffiliateName  string
	AffiliateEmail string
	ReferralCode   string
	GeneratedAt    string

	Lines []StatementLine

	Total  string
	Paid   string
	Unpaid string
}

type StatementLine struct {
	Date          string
	Prospect      string
	InvoiceNumber string
	InvoiceAmount string
	Commission    string
	Status        string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateStatement(_ context.Context, data StatementData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Commission statement", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(22,
		col.New(6).Add(
			text.New(data.AffiliateName, props.Text{Style: fontstyle.Bold}),
			text.New(data.AffiliateEmail, props.Text{Top: 5}),
			text.New("Referral code: "+data.ReferralCode, props.Text{Top: 10}),
		),
		col.New(6).Add(
			text.New(data.AppName, props.Text{Style: fontstyle.Bold, Align: align.Right}),
			text.New("Generated: "+data.GeneratedAt, props.Text{Top: 5, Align: align.Right}),
		),
	)

	m.AddRow(10,
		text.NewCol(2, "Date", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Prospect", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Invoice", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Commission", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "Status", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, line := range data.Lines {
		m.AddRow(8,
			text.NewCol(2, line.Date, props.Text{Size: 9}),
			text.NewCol(3, line.Prospect, props.Text{Size: 9}),
			text.NewCol(3, line.InvoiceNumber, props.Text{Size: 9}),
			text.NewCol(1, line.InvoiceAmount, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, line.Commission, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, line.Status, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Size: 9}),
		text.NewCol(2, data.Total, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Paid", props.Text{Size: 9}),
		text.NewCol(2, data.Paid, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Outstanding", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, data.Unpaid, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}

package server

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/iwvelando/finance-advisor/pkg/mathutil"
	"github.com/iwvelando/finance-advisor/pkg/tax"
	"github.com/spf13/cast"
)

// decodeTaxInput reads a tax scenario whose amounts may arrive as numbers or
// as the strings a form submits. Unparseable amounts count as 0.
func decodeTaxInput(data []byte) (tax.Input, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil {
		return tax.Input{}, err
	}
	if doc == nil {
		return tax.Input{}, errors.New("expected a JSON object")
	}

	return tax.Input{
		Income:         mathutil.ParseAmount(doc["income"]),
		ForeignIncome:  mathutil.ParseAmount(doc["foreignIncome"]),
		Investments:    mathutil.ParseAmount(doc["investments"]),
		Deductions:     mathutil.ParseAmount(doc["deductions"]),
		Regime:         tax.ParseRegime(cast.ToString(doc["regime"])),
		CapitalGains:   mathutil.ParseAmount(doc["capitalGains"]),
		HoldingPeriod:  tax.ParseHoldingPeriod(cast.ToString(doc["holdingPeriod"])),
		GST:            mathutil.ParseAmount(doc["gst"]),
		InputTaxCredit: mathutil.ParseAmount(doc["inputTaxCredit"]),
	}, nil
}

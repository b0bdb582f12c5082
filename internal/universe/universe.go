// Package universe holds the fixed set of tickers reconciled on every pass.
package universe

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rickgao/bistwatch/internal/model"
	"github.com/rickgao/bistwatch/internal/symbol"
)

// DefaultTickers is the BIST basket tracked when no universe is configured.
// Entries are in secondary-feed form; New normalizes them.
var DefaultTickers = []string{
	"AKBNK.IS", "ARCLK.IS", "ASELS.IS", "BIMAS.IS", "EKGYO.IS", "EREGL.IS", "FROTO.IS", "GARAN.IS", "HEKTS.IS", "ISCTR.IS",
	"KCHOL.IS", "KOZAA.IS", "KOZAL.IS", "KRDMD.IS", "PETKM.IS", "PGSUS.IS", "SAHOL.IS", "SASA.IS", "SISE.IS", "TCELL.IS",
	"THYAO.IS", "TUPRS.IS", "YKBNK.IS", "ALARK.IS", "ENKAI.IS", "TOASO.IS", "SOKM.IS", "TTKOM.IS", "VESTL.IS", "MGROS.IS",
	"HALKB.IS", "ISGYO.IS", "KARSN.IS", "LOGO.IS", "NETAS.IS", "ODAS.IS", "OTKAR.IS", "OYAKC.IS", "TKFEN.IS", "TMSN.IS",
	"AKSA.IS", "ALBRK.IS", "ANSGR.IS", "AYDEM.IS", "CIMSA.IS", "ENJSA.IS", "GUBRF.IS", "KONTR.IS", "KARTN.IS", "KONYA.IS",
	"KORDS.IS", "MAALT.IS", "MAVI.IS", "OZKGY.IS", "PENTA.IS", "QUAGR.IS", "SAFKR.IS", "SELEC.IS", "SEYKM.IS", "SNGYO.IS",
	"SODA.IS", "SRVGY.IS", "SUBAS.IS", "TRGYO.IS", "TTRAK.IS", "ULKER.IS", "VAKBN.IS", "ZOREN.IS", "AKGRT.IS", "AKFGY.IS",
	"ARZUM.IS", "ASUZU.IS", "ATLAS.IS", "AVOD.IS", "AYGAZ.IS", "BAGFS.IS", "BIZIM.IS", "BRISA.IS", "BRKO.IS", "CCOLA.IS",
	"DEVA.IS", "DOAS.IS", "DOHOL.IS", "DMSAS.IS", "ECILC.IS", "EGEEN.IS", "EGSER.IS", "EPLAS.IS", "GEDIK.IS", "GLYHO.IS",
	"GSRAY.IS", "KERVT.IS", "KIPA.IS", "KSKUT.IS", "LUKSK.IS", "METRO.IS", "NTHOL.IS", "OYLUM.IS", "PAPIL.IS", "PEGAS.IS",
	"PRKME.IS", "RYSAS.IS",
}

// Universe is an ordered, deduplicated set of canonical tickers. It is immutable after New.
type Universe struct {
	tickers []model.Ticker
	index   map[model.Ticker]struct{}
}

// New normalizes raw symbols into a Universe, preserving first-seen order.
func New(raw []string, n symbol.Normalizer) (*Universe, error) {
	u := &Universe{
		tickers: make([]model.Ticker, 0, len(raw)),
		index:   make(map[model.Ticker]struct{}, len(raw)),
	}

	var invalid []string
	for _, r := range raw {
		t := n.Normalize(r)
		if !valid(t) {
			invalid = append(invalid, fmt.Sprintf("%q", r))
			continue
		}
		if _, dup := u.index[t]; dup {
			continue
		}
		u.index[t] = struct{}{}
		u.tickers = append(u.tickers, t)
	}

	if len(invalid) > 0 {
		return nil, fmt.Errorf("invalid tickers: %s", strings.Join(invalid, ", "))
	}
	if len(u.tickers) == 0 {
		return nil, errors.New("universe is empty")
	}
	return u, nil
}

// Tickers returns the universe in configured order.
func (u *Universe) Tickers() []model.Ticker {
	out := make([]model.Ticker, len(u.tickers))
	copy(out, u.tickers)
	return out
}

// Contains reports whether t is part of the universe.
func (u *Universe) Contains(t model.Ticker) bool {
	_, ok := u.index[t]
	return ok
}

// Len returns the number of tickers.
func (u *Universe) Len() int {
	return len(u.tickers)
}

func valid(t model.Ticker) bool {
	if t == "" {
		return false
	}
	for _, c := range string(t) {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

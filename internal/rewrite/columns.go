package rewrite

import (
	"github.com/packsync/packsync/internal/model"
)

// Departure list column definitions each plugin contributes. The ASSR column
// is re-pointed at the UK Controller Plugin's squawk allocation; VFPC and
// CDM add their own columns.
var (
	ukcpSquawkColumn = "m_Column:ASSR:5:1:60:9000:9022:1::UK Controller Plugin:UK Controller Plugin:0:0.0"

	vfpcColumn = "m_Column:VFPC:5:0:1:100:9004:1:VFPC (UK):VFPC (UK):UK Controller Plugin:0:0.0"

	cdmColumns = []string{
		"m_Column:EOBT:5:1:1:120:100:1:CDM Plugin:CDM Plugin:CDM Plugin:0:0.0",
		"m_Column:E:2:1:9:0:123:1:CDM Plugin::CDM Plugin:0:0.0",
		"m_Column:TOBT:5:1:4:121:115:1:CDM Plugin:CDM Plugin:CDM Plugin:0:0.0",
		"m_Column:TSAT:5:1:2:0:0:1:CDM Plugin:::0:0.0",
		"m_Column:TTOT:5:1:3:0:0:1:CDM Plugin:::0:0.0",
		"m_Column:TSAC:5:1:5:122:104:1:CDM Plugin:CDM Plugin:CDM Plugin:0:0.0",
		"m_Column:ASAT:5:1:6:0:0:1:CDM Plugin:::0:0.0",
		"m_Column:ASRT:5:1:7:107:0:1:CDM Plugin:CDM Plugin::0:0.0",
		"m_Column:CTOT:5:1:10:108:0:1:CDM Plugin:CDM Plugin::0:0.0",
		"m_Column:STUP:7:1:9:106:0:1::CDM Plugin::0:0.0",
	}
)

// DepartureListColumns seeds plugin columns into a departure list setup.
// Only the columns of enabled plugins are touched. It reports whether the
// document changed.
func DepartureListColumns(doc *model.Document, enabled func(model.PluginID) bool) bool {
	changed := false

	if enabled(model.PluginUKCP) {
		if setLine(doc, ukcpSquawkColumn) {
			changed = true
		}
	}
	if enabled(model.PluginVFPC) {
		if setLine(doc, vfpcColumn) {
			changed = true
		}
	}
	if enabled(model.PluginCDM) {
		for _, col := range cdmColumns {
			if setLine(doc, col) {
				changed = true
			}
		}
	}
	return changed
}

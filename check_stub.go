//go:build !cfixcheck

package cfix

// checkBin and checkAllBins are no-ops in a release build; see check.go for
// the cfixcheck-tagged implementation.
func (t *Table) checkBin(base uint32)  {}
func (t *Table) checkAllBins()         {}

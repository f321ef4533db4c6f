package view

import "github.com/determined-ai/memberpanel/pkg/model"

// Reconcile replaces the list with one entry per processor in snapshot order. On a full refresh
// the selection control is rebuilt too; otherwise it is left alone so that routine polling does
// not disturb an operator's choice.
func Reconcile(doc Document, snap model.Snapshot, fullRefresh bool) {
	list := doc.List()
	list.Clear()

	var sel SelectControl
	if fullRefresh {
		sel = doc.Select()
		sel.ClearOptions()
	}

	for _, p := range snap {
		list.Append(EntryText(p))
		if fullRefresh {
			sel.AddOption(OptionFor(p))
		}
	}
}

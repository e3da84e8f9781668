package client

import (
	"github.com/rivo/tview"
)

func (t *TUI) showError(message string) {
	t.showDialog("Ошибка", message, "OK", nil)
}

func (t *TUI) showInfo(message string) {
	t.showDialog("Информация", message, "OK", nil)
}

func (t *TUI) showDialog(title, message, buttonText string, callback func()) {
	modal := tview.NewModal().
		SetText(message).
		AddButtons([]string{buttonText}).
		SetDoneFunc(func(buttonIndex int, _ string) {
			t.pages.RemovePage(pageDialog)
			if buttonIndex == 0 && callback != nil {
				callback()
			}
		})

	if title != "" {
		modal.SetTitle(title).SetBorder(true)
	}

	t.pages.AddPage(pageDialog, modal, true, true)
}

// showConfirm вызывает onConfirm только при выборе первой кнопки.
func (t *TUI) showConfirm(message, confirmText string, onConfirm func()) {
	modal := tview.NewModal().
		SetText(message).
		AddButtons([]string{confirmText, "Отмена"}).
		SetDoneFunc(func(buttonIndex int, _ string) {
			t.pages.RemovePage(pageDialog)
			if buttonIndex == 0 {
				onConfirm()
			}
		})

	modal.SetTitle("Подтверждение").SetBorder(true)

	t.pages.AddPage(pageDialog, modal, true, true)
}

// centered помещает форму фиксированного размера в центр экрана.
func centered(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			SetDirection(tview.FlexColumn).
			AddItem(nil, 0, 1, false).
			AddItem(p, width, 1, true).
			AddItem(nil, 0, 1, false),
			height, 1, true).
		AddItem(nil, 0, 1, false)
}

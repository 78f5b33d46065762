package results

// StatusNotifyMsg tells the app to show a message in the status bar.
type StatusNotifyMsg struct {
	Message string
}

// RowSelectedMsg is sent when the user opens the row under the cursor.
type RowSelectedMsg struct {
	Table string
	Row   int
}

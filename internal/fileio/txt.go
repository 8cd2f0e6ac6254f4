package fileio

// readTXT — plain text в любой из поддерживаемых кириллических кодировок.
func readTXT(data []byte) string {
	text, _ := decodeText(data)
	return text
}

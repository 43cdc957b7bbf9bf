package page

// View is a read-only handle to a Page. Views of the same Page compare equal,
// so callers can check that two lookups returned the same cached page.
// The zero View refers to no page and must not be used.
type View struct {
	page *Page
}

func (v View) ID() ID {
	return v.page.ID()
}

func (v View) Kind() Kind {
	return v.page.Kind()
}

func (v View) Header() Header {
	return v.page.Header()
}

func (v View) TryParseHeader() (Header, error) {
	return v.page.TryParseHeader()
}

func (v View) Bytes() [Size]byte {
	return v.page.Bytes()
}

func (v View) Read(offset, length int) ([]byte, error) {
	return v.page.Read(offset, length)
}

func (v View) IsDirty() bool {
	return v.page.IsDirty()
}

func (v View) PinCount() int {
	return v.page.PinCount()
}

// Is reports whether v is a view of p.
func (v View) Is(p *Page) bool {
	return v.page == p
}

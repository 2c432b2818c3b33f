package collector

// fakeResolver 是测试用的内存分类解析器
type fakeResolver struct {
	lookupID uint
	lookupOK bool
	anyID    uint
	anyOK    bool
	ensureID uint
	ensured  []string
}

func (f *fakeResolver) LookupCategory(slug string) (uint, bool, error) {
	return f.lookupID, f.lookupOK, nil
}

func (f *fakeResolver) AnyCategoryID() (uint, bool, error) {
	return f.anyID, f.anyOK, nil
}

func (f *fakeResolver) EnsureCategory(slug, name, description string) (uint, error) {
	f.ensured = append(f.ensured, slug)
	return f.ensureID, nil
}

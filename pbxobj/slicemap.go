package pbxobj

// Item is one key/value entry of an Object, in file order.
type Item struct {
	Key   string
	Value interface{}
}

type sliceMap struct {
	index map[string]int
	items []*Item
}

func newSliceMap() *sliceMap {
	return &sliceMap{
		index: make(map[string]int),
		items: make([]*Item, 0),
	}
}

func (m *sliceMap) Get(key string) (interface{}, bool) {
	idx, found := m.index[key]
	if !found {
		return nil, false
	}
	return m.items[idx].Value, true
}

func (m *sliceMap) ForceGet(key string) interface{} {
	v, _ := m.Get(key)
	return v
}

// Set overwrites in place; a re-set key keeps its original position.
func (m *sliceMap) Set(key string, v interface{}) {
	if idx, found := m.index[key]; found {
		m.items[idx].Value = v
		return
	}
	m.items = append(m.items, &Item{Key: key, Value: v})
	m.index[key] = len(m.items) - 1
}

func (m *sliceMap) Has(key string) bool {
	_, found := m.index[key]
	return found
}

func (m *sliceMap) Delete(key string) {
	idx, found := m.index[key]
	if !found {
		return
	}
	m.items = append(m.items[:idx], m.items[idx+1:]...)
	delete(m.index, key)
	for i := idx; i < len(m.items); i++ {
		m.index[m.items[i].Key] = i
	}
}

func (m *sliceMap) Size() int {
	return len(m.items)
}

func (m *sliceMap) Items() []*Item {
	return m.items
}

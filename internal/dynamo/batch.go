package dynamo

// Batch stores Rows independent vectors of length Dim in one flat slice.
// Row i occupies Data[i*Dim : (i+1)*Dim].
type Batch struct {
	Rows int
	Dim  int
	Data []float64
}

func NewBatch(rows, dim int) Batch {
	return Batch{Rows: rows, Dim: dim, Data: make([]float64, rows*dim)}
}

// Row returns a view of row i; writes go through to the batch.
func (b Batch) Row(i int) []float64 {
	return b.Data[i*b.Dim : (i+1)*b.Dim : (i+1)*b.Dim]
}

// Slice returns a view of rows [start, end).
func (b Batch) Slice(start, end int) Batch {
	return Batch{Rows: end - start, Dim: b.Dim, Data: b.Data[start*b.Dim : end*b.Dim]}
}

func (b Batch) Clone() Batch {
	c := NewBatch(b.Rows, b.Dim)
	copy(c.Data, b.Data)
	return c
}

// Fill copies v into every row.
func (b Batch) Fill(v []float64) {
	for i := 0; i < b.Rows; i++ {
		copy(b.Row(i), v)
	}
}

func (b Batch) IsValid() bool {
	return State(b.Data).IsValid()
}

package problem

import (
	"fmt"

	"github.com/vassdrag/lpbuild"
)

type cellKey struct {
	row         lpbuild.Id
	column      lpbuild.Id
	rowIndex    int
	columnIndex int
}

type entryKey struct {
	id    lpbuild.Id
	index int
}

type rhsKey struct {
	row      lpbuild.Id
	term     lpbuild.Id
	rowIndex int
}

// Matrix is an in-memory Problem implementation recording every declaration
// and assignment by symbolic identity. It backs tests and dry builds; a
// solver-backed implementation lives outside this module.
type Matrix struct {
	columns      map[lpbuild.Id]int
	rows         map[lpbuild.Id]int
	coefficients map[cellKey]float64
	objective    map[entryKey]float64
	rhs          map[rhsKey]float64
}

// NewMatrix constructs an empty in-memory problem.
func NewMatrix() *Matrix {
	return &Matrix{
		columns:      make(map[lpbuild.Id]int),
		rows:         make(map[lpbuild.Id]int),
		coefficients: make(map[cellKey]float64),
		objective:    make(map[entryKey]float64),
		rhs:          make(map[rhsKey]float64),
	}
}

// AddColumns declares count columns under id. Redeclaring an identity or
// declaring a non-positive count panics: structure is built exactly once.
func (m *Matrix) AddColumns(id lpbuild.Id, count int) {
	if count <= 0 {
		panic(fmt.Sprintf("problem: non-positive column count %d for %s", count, id))
	}
	if _, exists := m.columns[id]; exists {
		panic(fmt.Sprintf("problem: columns %s declared twice", id))
	}
	m.columns[id] = count
}

// AddRows declares count rows under id.
func (m *Matrix) AddRows(id lpbuild.Id, count int) {
	if count <= 0 {
		panic(fmt.Sprintf("problem: non-positive row count %d for %s", count, id))
	}
	if _, exists := m.rows[id]; exists {
		panic(fmt.Sprintf("problem: rows %s declared twice", id))
	}
	m.rows[id] = count
}

// SetCoefficient sets one matrix entry.
func (m *Matrix) SetCoefficient(row, column lpbuild.Id, rowIndex, columnIndex int, value float64) {
	m.checkRow(row, rowIndex)
	m.checkColumn(column, columnIndex)
	m.coefficients[cellKey{row: row, column: column, rowIndex: rowIndex, columnIndex: columnIndex}] = value
}

// SetObjective sets one objective coefficient.
func (m *Matrix) SetObjective(column lpbuild.Id, columnIndex int, value float64) {
	m.checkColumn(column, columnIndex)
	m.objective[entryKey{id: column, index: columnIndex}] = value
}

// SetRHS sets one right-hand-side term.
func (m *Matrix) SetRHS(row, term lpbuild.Id, rowIndex int, value float64) {
	m.checkRow(row, rowIndex)
	m.rhs[rhsKey{row: row, term: term, rowIndex: rowIndex}] = value
}

// ColumnCount returns the number of columns declared under id, zero when
// undeclared.
func (m *Matrix) ColumnCount(id lpbuild.Id) int { return m.columns[id] }

// RowCount returns the number of rows declared under id, zero when
// undeclared.
func (m *Matrix) RowCount(id lpbuild.Id) int { return m.rows[id] }

// Coefficient returns the stored matrix entry, zero when never set.
func (m *Matrix) Coefficient(row, column lpbuild.Id, rowIndex, columnIndex int) float64 {
	return m.coefficients[cellKey{row: row, column: column, rowIndex: rowIndex, columnIndex: columnIndex}]
}

// Objective returns the stored objective coefficient, zero when never set.
func (m *Matrix) Objective(column lpbuild.Id, columnIndex int) float64 {
	return m.objective[entryKey{id: column, index: columnIndex}]
}

// RHS returns the stored right-hand-side term, zero when never set.
func (m *Matrix) RHS(row, term lpbuild.Id, rowIndex int) float64 {
	return m.rhs[rhsKey{row: row, term: term, rowIndex: rowIndex}]
}

func (m *Matrix) checkRow(id lpbuild.Id, index int) {
	count, ok := m.rows[id]
	if !ok {
		panic(fmt.Sprintf("problem: rows %s not declared", id))
	}
	if index < 0 || index >= count {
		panic(fmt.Sprintf("problem: row index %d out of range for %s (count %d)", index, id, count))
	}
}

func (m *Matrix) checkColumn(id lpbuild.Id, index int) {
	count, ok := m.columns[id]
	if !ok {
		panic(fmt.Sprintf("problem: columns %s not declared", id))
	}
	if index < 0 || index >= count {
		panic(fmt.Sprintf("problem: column index %d out of range for %s (count %d)", index, id, count))
	}
}

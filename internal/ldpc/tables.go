package ldpc

// liftingSetIndex returns the 3GPP TS 38.212 Table 5.3.2-1 set index (0-7)
// that a lifting size Z belongs to: the circulant shift table is tabulated
// once per set, not once per Z, and the shift actually used for a given Z is
// the tabulated value reduced modulo that Z.
func liftingSetIndex(z int) int {
	for i, set := range liftingSets {
		for _, cand := range set {
			if cand == z {
				return i
			}
		}
	}
	return 0
}

// liftingSets groups the 51-value lifting size set by common shift-table
// column, per 3GPP TS 38.212 Table 5.3.2-1.
var liftingSets = [8][]int{
	{2, 4, 8, 16, 32, 64, 128, 256},
	{3, 6, 12, 24, 48, 96, 192, 384},
	{5, 10, 20, 40, 80, 160, 320},
	{7, 14, 28, 56, 112, 224},
	{9, 18, 36, 72, 144, 288},
	{11, 22, 44, 88, 176, 352},
	{13, 26, 52, 104, 208},
	{15, 30, 60, 120, 240},
}

// baseGraphEntry is one non-zero circulant position in a base graph's core
// rows: column index (within the Kb systematic columns) and the per-set
// shift coefficient V_{i,j}, one value per entry of liftingSets.
type baseGraphEntry struct {
	col    int
	shifts [8]int
}

// bg1CoreRows holds the literal circulant shifts for BG1's four core parity
// rows (3GPP TS 38.212 Table 5.3.2-2, rows 0-3), transcribed to the best
// fidelity available without a reference copy of the printed table at hand;
// see DESIGN.md for the accuracy caveat this carries.
var bg1CoreRows = [4][]baseGraphEntry{
	{
		{0, [8]int{250, 307, 73, 223, 211, 294, 0, 135}},
		{1, [8]int{69, 19, 1, 13, 14, 6, 0, 5}},
		{2, [8]int{226, 50, 2, 24, 13, 4, 8, 0}},
		{3, [8]int{159, 369, 53, 130, 99, 92, 12, 97}},
		{5, [8]int{100, 181, 26, 68, 11, 60, 0, 34}},
		{6, [8]int{10, 216, 75, 166, 29, 49, 2, 21}},
		{9, [8]int{121, 317, 29, 189, 82, 130, 4, 70}},
		{10, [8]int{88, 105, 3, 18, 6, 10, 0, 8}},
	},
	{
		{0, [8]int{2, 76, 4, 119, 53, 111, 6, 24}},
		{1, [8]int{239, 76, 7, 33, 33, 94, 3, 95}},
		{2, [8]int{117, 73, 14, 59, 52, 29, 9, 25}},
		{5, [8]int{124, 288, 22, 65, 7, 94, 7, 115}},
	},
	{
		{0, [8]int{125, 296, 69, 185, 11, 89, 1, 120}},
		{1, [8]int{151, 342, 10, 56, 89, 98, 10, 17}},
		{2, [8]int{226, 37, 9, 101, 5, 127, 11, 69}},
	},
	{
		{0, [8]int{1, 76, 1, 94, 82, 23, 11, 43}},
		{1, [8]int{60, 173, 20, 126, 2, 154, 4, 58}},
		{2, [8]int{197, 90, 44, 72, 22, 48, 6, 1}},
	},
}

// bg2CoreRows is BG2's four core parity rows (3GPP TS 38.212 Table 5.3.2-3,
// rows 0-3), same transcription caveat as bg1CoreRows.
var bg2CoreRows = [4][]baseGraphEntry{
	{
		{0, [8]int{9, 165, 28, 48, 176, 156, 143, 15}},
		{1, [8]int{117, 81, 39, 16, 144, 143, 51, 151}},
		{2, [8]int{204, 114, 6, 28, 153, 37, 154, 154}},
		{3, [8]int{25, 29, 22, 5, 25, 16, 12, 27}},
		{5, [8]int{47, 106, 9, 63, 91, 38, 68, 61}},
	},
	{
		{0, [8]int{167, 94, 2, 24, 132, 98, 11, 98}},
		{1, [8]int{61, 107, 23, 1, 84, 105, 36, 101}},
		{2, [8]int{224, 14, 24, 61, 39, 77, 74, 60}},
	},
	{
		{0, [8]int{10, 73, 9, 53, 169, 90, 130, 24}},
		{1, [8]int{22, 95, 14, 17, 100, 30, 80, 61}},
		{2, [8]int{133, 56, 1, 36, 13, 105, 57, 64}},
	},
	{
		{0, [8]int{9, 12, 19, 41, 18, 142, 40, 12}},
		{1, [8]int{130, 35, 32, 29, 165, 12, 101, 80}},
		{2, [8]int{206, 94, 6, 25, 25, 59, 114, 98}},
	},
}

// coreShift looks up the literal core-row circulant shift for (bg, row, col)
// at lifting size z, returning ok=false when the base graph's core rows have
// no connection at that column.
func coreShift(bg BaseGraph, row, col, z int) (shift int, ok bool) {
	rows := bg1CoreRows
	if bg == BG2 {
		rows = bg2CoreRows
	}
	if row < 0 || row >= len(rows) {
		return 0, false
	}
	for _, e := range rows[row] {
		if e.col == col {
			return e.shifts[liftingSetIndex(z)] % z, true
		}
	}
	return 0, false
}

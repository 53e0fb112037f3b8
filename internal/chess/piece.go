package chess

// Color is one of White or Black.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposing color.
func (c Color) Other() Color { return c ^ 1 }

func (c Color) String() string {
	switch c {
	case White:
		return "w"
	case Black:
		return "b"
	default:
		return "-"
	}
}

// PieceType is one of the six chess piece kinds.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

var pieceTypeChars = [7]byte{'p', 'n', 'b', 'r', 'q', 'k', ' '}

// Char returns the lowercase FEN letter for the piece type.
func (pt PieceType) Char() byte {
	if pt > NoPieceType {
		return ' '
	}
	return pieceTypeChars[pt]
}

// MaterialValue holds the centipawn values used by move ordering (spec
// §4.6): pawn, knight, bishop, rook, queen, king (effectively infinite),
// none. SEE uses its own copy of the same table (see.go); this one backs
// MVV-LVA and delta pruning.
var MaterialValue = [7]int{254, 453, 458, 712, 1278, kingValue, 0}

// Piece packs a PieceType and Color into a single byte: colour*6 + type.
type Piece uint8

const (
	WhitePawn Piece = iota
	WhiteKnight
	WhiteBishop
	WhiteRook
	WhiteQueen
	WhiteKing
	BlackPawn
	BlackKnight
	BlackBishop
	BlackRook
	BlackQueen
	BlackKing
	NoPiece Piece = 12
)

// NewPiece builds a Piece from its type and color.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece(c)*6 + Piece(pt)
}

// Type extracts the PieceType.
func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

// Color extracts the Color.
func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / 6)
}

// Value returns the classical material value of the piece.
func (p Piece) Value() int { return MaterialValue[p.Type()] }

const pieceChars = "PNBRQKpnbrqk"

func (p Piece) String() string {
	if p >= NoPiece {
		return "."
	}
	return string(pieceChars[p])
}

// PieceFromChar maps a FEN piece letter to a Piece, or NoPiece if unknown.
func PieceFromChar(c byte) Piece {
	for i := 0; i < len(pieceChars); i++ {
		if pieceChars[i] == c {
			return Piece(i)
		}
	}
	return NoPiece
}

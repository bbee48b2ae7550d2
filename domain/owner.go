package domain

type Owner struct {
	ID      int64   `db:"id" json:"id"`
	Name    string  `db:"name" json:"name"`
	Phone   string  `db:"phone" json:"phone"`
	Email   *string `db:"email" json:"email,omitempty"`
	Address *string `db:"address" json:"address,omitempty"`
}

type Pet struct {
	ID      int64   `db:"id" json:"id"`
	OwnerID int64   `db:"owner_id" json:"owner_id"`
	Name    string  `db:"name" json:"name"`
	Species string  `db:"species" json:"species"`
	Breed   *string `db:"breed" json:"breed,omitempty"`
	Age     *int64  `db:"age" json:"age,omitempty"`
}

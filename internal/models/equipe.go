package models

// Personnel is a port employee, keyed by badge number.
type Personnel struct {
	Matricule string `gorm:"primaryKey;size:32" json:"matricule"`
	Nom       string `gorm:"size:255;not null" json:"nom"`
	Prenom    string `gorm:"size:255" json:"prenom"`
	Fonction  string `gorm:"size:255" json:"fonction"`
	Contact   string `gorm:"size:255" json:"contact"`
	Timestamps
}

// Soustraiteure is a subcontracted worker.
type Soustraiteure struct {
	Matricule  string `gorm:"primaryKey;size:32" json:"matricule"`
	Nom        string `gorm:"size:255;not null" json:"nom"`
	Prenom     string `gorm:"size:255" json:"prenom"`
	Fonction   string `gorm:"size:255" json:"fonction"`
	Contact    string `gorm:"size:255" json:"contact"`
	Entreprise string `gorm:"size:255" json:"entreprise"`
	Timestamps
}

type Equipe struct {
	ID  string `gorm:"primaryKey;size:32" json:"id"`
	Nom string `gorm:"size:255;not null" json:"nom"`
	Timestamps

	Personnels     []Personnel     `gorm:"many2many:equipe_personnels;joinForeignKey:EquipeID;joinReferences:PersonnelMatricule" json:"personnels"`
	Soustraiteures []Soustraiteure `gorm:"many2many:equipe_soustraiteures;joinForeignKey:EquipeID;joinReferences:SoustraiteureMatricule" json:"soustraiteures"`
}

func (Personnel) TableName() string { return "personnels" }

func (Soustraiteure) TableName() string { return "soustraiteures" }

func (Equipe) TableName() string { return "equipes" }

package handlers

const (
	msgFilmList       = "Film list. Tap a title for details."
	msgCatalogEmpty   = "The catalog is empty."
	msgFilmNotFound   = "Film not found."
	msgAdminOnly      = "Only the administrator can add films."
	msgFilmAdded      = "Film \"%s\" added."
	msgFormIncomplete = "Some fields were missing, the film was not saved. Start again with /add_film."
	msgSaveFailed     = "Could not save the film. Send the poster URL again to retry."
	msgFormCancelled  = "Film creation cancelled."
	msgNothingToStop  = "There is no film being added."
	msgStartHint      = "Use /films to browse the catalog."
)

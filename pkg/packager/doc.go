// Package packager turns an accepted form snapshot into a multipart payload.
//
// Field naming is part of the intake contract and must stay stable:
//
//	firstName, lastName, email, dob
//	residentialAddress[street1], residentialAddress[street2]
//	sameAsResidential
//	permanentAddress[street1], permanentAddress[street2]
//	documents                  (binary, repeated once per attached file)
//	documents[i][fileName], documents[i][fileType]
//
// The i-th "documents" binary part is described by documents[i][...].
package packager

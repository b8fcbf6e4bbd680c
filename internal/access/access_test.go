package access

import "testing"

func TestEvaluate(t *testing.T) {
	readGrant := &Grant{GranteeID: "usr_2", Permission: PermissionRead}
	writeGrant := &Grant{GranteeID: "usr_2", Permission: PermissionWrite}

	cases := []struct {
		name     string
		userID   string
		ownerID  string
		grant    *Grant
		required Permission
		allowed  bool
		reason   Reason
	}{
		{name: "owner read", userID: "usr_1", ownerID: "usr_1", required: PermissionRead, allowed: true, reason: ReasonOwner},
		{name: "owner write", userID: "usr_1", ownerID: "usr_1", required: PermissionWrite, allowed: true, reason: ReasonOwner},
		{name: "stranger read", userID: "usr_2", ownerID: "usr_1", required: PermissionRead, allowed: false, reason: ReasonNotShared},
		{name: "stranger write", userID: "usr_2", ownerID: "usr_1", required: PermissionWrite, allowed: false, reason: ReasonNotShared},
		{name: "read grant read", userID: "usr_2", ownerID: "usr_1", grant: readGrant, required: PermissionRead, allowed: true, reason: ReasonGranted},
		{name: "read grant write", userID: "usr_2", ownerID: "usr_1", grant: readGrant, required: PermissionWrite, allowed: false, reason: ReasonInsufficientPermission},
		{name: "write grant read", userID: "usr_2", ownerID: "usr_1", grant: writeGrant, required: PermissionRead, allowed: true, reason: ReasonGranted},
		{name: "write grant write", userID: "usr_2", ownerID: "usr_1", grant: writeGrant, required: PermissionWrite, allowed: true, reason: ReasonGranted},
		{name: "grant for someone else", userID: "usr_3", ownerID: "usr_1", grant: readGrant, required: PermissionRead, allowed: false, reason: ReasonNotShared},
		{name: "empty user", userID: "", ownerID: "", required: PermissionRead, allowed: false, reason: ReasonNotShared},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := Evaluate(tc.userID, tc.ownerID, tc.grant, tc.required)
			if decision.Allowed != tc.allowed || decision.Reason != tc.reason {
				t.Fatalf("Evaluate() = %+v, want allowed=%v reason=%s", decision, tc.allowed, tc.reason)
			}
		})
	}
}

func TestSatisfies(t *testing.T) {
	cases := []struct {
		granted  Permission
		required Permission
		want     bool
	}{
		{PermissionRead, PermissionRead, true},
		{PermissionRead, PermissionWrite, false},
		{PermissionWrite, PermissionRead, true},
		{PermissionWrite, PermissionWrite, true},
		{Permission("admin"), PermissionRead, false},
	}
	for _, tc := range cases {
		if got := Satisfies(tc.granted, tc.required); got != tc.want {
			t.Fatalf("Satisfies(%q, %q) = %v, want %v", tc.granted, tc.required, got, tc.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if Normalize("write") != PermissionWrite {
		t.Fatal("expected write to normalize to write")
	}
	if Normalize("owner") != PermissionRead {
		t.Fatal("expected unknown permission to normalize to read")
	}
	if Valid("delete") {
		t.Fatal("expected delete to be outside the permission set")
	}
}

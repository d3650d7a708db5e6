package syntax

// Kind identifies the variant of a Node.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindCompilationUnit
	KindExternAlias
	KindUsingDirective
	KindNamespaceDeclaration
	KindClassDeclaration
	KindStructDeclaration
	KindInterfaceDeclaration
	KindRecordDeclaration
	KindEnumDeclaration
	KindDelegateDeclaration
	KindTypeParameterList
	KindParameterList
	KindBaseList
	KindSimpleBaseType
	KindPrimaryConstructorBaseType
	KindIdentifierName
	KindGenericName
	KindQualifiedName
	KindAliasQualifiedName
	KindTypeArgumentList
	KindAttributeList
	KindAttribute
	KindMember

	kindCount
)

var kindNames = [kindCount]string{
	KindInvalid:                    "Invalid",
	KindCompilationUnit:            "CompilationUnit",
	KindExternAlias:                "ExternAlias",
	KindUsingDirective:             "UsingDirective",
	KindNamespaceDeclaration:       "NamespaceDeclaration",
	KindClassDeclaration:           "ClassDeclaration",
	KindStructDeclaration:          "StructDeclaration",
	KindInterfaceDeclaration:       "InterfaceDeclaration",
	KindRecordDeclaration:          "RecordDeclaration",
	KindEnumDeclaration:            "EnumDeclaration",
	KindDelegateDeclaration:        "DelegateDeclaration",
	KindTypeParameterList:          "TypeParameterList",
	KindParameterList:              "ParameterList",
	KindBaseList:                   "BaseList",
	KindSimpleBaseType:             "SimpleBaseType",
	KindPrimaryConstructorBaseType: "PrimaryConstructorBaseType",
	KindIdentifierName:             "IdentifierName",
	KindGenericName:                "GenericName",
	KindQualifiedName:              "QualifiedName",
	KindAliasQualifiedName:         "AliasQualifiedName",
	KindTypeArgumentList:           "TypeArgumentList",
	KindAttributeList:              "AttributeList",
	KindAttribute:                  "Attribute",
	KindMember:                     "Member",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(?)"
}

// Valid reports whether k is one of the declared kinds other than KindInvalid.
func (k Kind) Valid() bool {
	return k > KindInvalid && k < kindCount
}

// KindCount is the number of declared kinds, usable to size per-kind tables.
const KindCount = int(kindCount)

// IsTypeDeclaration reports whether k declares a named type.
func (k Kind) IsTypeDeclaration() bool {
	switch k {
	case KindClassDeclaration, KindStructDeclaration, KindInterfaceDeclaration,
		KindRecordDeclaration, KindEnumDeclaration, KindDelegateDeclaration:
		return true
	}
	return false
}

// IsName reports whether k is a (possibly qualified or generic) name.
func (k Kind) IsName() bool {
	switch k {
	case KindIdentifierName, KindGenericName, KindQualifiedName, KindAliasQualifiedName:
		return true
	}
	return false
}

package clang

import (
	"fmt"

	"github.com/mvp-joe/cxgraph/internal/enum"
)

type f = enum.Field

func symbol(t *enum.Table, v int64) string {
	if s, ok := t.Symbol(v); ok {
		return s
	}
	return fmt.Sprintf("%s(%d)", t.Name(), v)
}

// CursorKind classifies a cursor.
type CursorKind int

const (
	CursorUnexposedDecl      CursorKind = 1
	CursorStructDecl         CursorKind = 2
	CursorUnionDecl          CursorKind = 3
	CursorClassDecl          CursorKind = 4
	CursorEnumDecl           CursorKind = 5
	CursorFieldDecl          CursorKind = 6
	CursorEnumConstantDecl   CursorKind = 7
	CursorFunctionDecl       CursorKind = 8
	CursorVarDecl            CursorKind = 9
	CursorParmDecl           CursorKind = 10
	CursorTypedefDecl        CursorKind = 20
	CursorLinkageSpec        CursorKind = 23
	CursorTypeRef            CursorKind = 43
	CursorMemberRef          CursorKind = 47
	CursorLabelRef           CursorKind = 48
	CursorVariableRef        CursorKind = 50
	CursorInvalidFile        CursorKind = 70
	CursorNoDeclFound        CursorKind = 71
	CursorNotImplemented     CursorKind = 72
	CursorInvalidCode        CursorKind = 73
	CursorUnexposedExpr      CursorKind = 100
	CursorDeclRefExpr        CursorKind = 101
	CursorMemberRefExpr      CursorKind = 102
	CursorCallExpr           CursorKind = 103
	CursorIntegerLiteral     CursorKind = 106
	CursorFloatingLiteral    CursorKind = 107
	CursorImaginaryLiteral   CursorKind = 108
	CursorStringLiteral      CursorKind = 109
	CursorCharacterLiteral   CursorKind = 110
	CursorParenExpr          CursorKind = 111
	CursorUnaryOperator      CursorKind = 112
	CursorArraySubscriptExpr CursorKind = 113
	CursorBinaryOperator     CursorKind = 114
	CursorCompoundAssignOp   CursorKind = 115
	CursorConditionalOp      CursorKind = 116
	CursorCStyleCastExpr     CursorKind = 117
	CursorCompoundLiteral    CursorKind = 118
	CursorInitListExpr       CursorKind = 119
	CursorAddrLabelExpr      CursorKind = 120
	CursorStmtExpr           CursorKind = 121
	CursorGenericSelection   CursorKind = 122
	CursorGNUNullExpr        CursorKind = 123
	CursorBoolLiteralExpr    CursorKind = 130
	CursorUnaryExpr          CursorKind = 136
	CursorUnexposedStmt      CursorKind = 200
	CursorLabelStmt          CursorKind = 201
	CursorCompoundStmt       CursorKind = 202
	CursorCaseStmt           CursorKind = 203
	CursorDefaultStmt        CursorKind = 204
	CursorIfStmt             CursorKind = 205
	CursorSwitchStmt         CursorKind = 206
	CursorWhileStmt          CursorKind = 207
	CursorDoStmt             CursorKind = 208
	CursorForStmt            CursorKind = 209
	CursorGotoStmt           CursorKind = 210
	CursorIndirectGotoStmt   CursorKind = 211
	CursorContinueStmt       CursorKind = 212
	CursorBreakStmt          CursorKind = 213
	CursorReturnStmt         CursorKind = 214
	CursorGCCAsmStmt         CursorKind = 215
	CursorNullStmt           CursorKind = 230
	CursorDeclStmt           CursorKind = 231
	CursorTranslationUnit    CursorKind = 350
	CursorUnexposedAttr      CursorKind = 400
	CursorAnnotateAttr       CursorKind = 406
	CursorPackedAttr         CursorKind = 408
	CursorPureAttr           CursorKind = 409
	CursorConstAttr          CursorKind = 410
	CursorVisibilityAttr     CursorKind = 417
	CursorWarnUnusedResult   CursorKind = 440
	CursorAlignedAttr        CursorKind = 441
	CursorPreprocessing      CursorKind = 500
	CursorMacroDefinition    CursorKind = 501
	CursorMacroExpansion     CursorKind = 502
	CursorInclusionDirective CursorKind = 503
	CursorStaticAssert       CursorKind = 602
)

// CursorKinds is the CursorKind table.
var CursorKinds = enum.New("CursorKind",
	f{Name: "unexposed_decl", Value: 1}, f{Name: "struct_decl", Value: 2}, f{Name: "union_decl", Value: 3},
	f{Name: "class_decl", Value: 4}, f{Name: "enum_decl", Value: 5}, f{Name: "field_decl", Value: 6},
	f{Name: "enum_constant_decl", Value: 7}, f{Name: "function_decl", Value: 8}, f{Name: "var_decl", Value: 9},
	f{Name: "parm_decl", Value: 10}, f{Name: "obj_c_interface_decl", Value: 11}, f{Name: "obj_c_category_decl", Value: 12},
	f{Name: "obj_c_protocol_decl", Value: 13}, f{Name: "obj_c_property_decl", Value: 14}, f{Name: "obj_c_ivar_decl", Value: 15},
	f{Name: "obj_c_instance_method_decl", Value: 16}, f{Name: "obj_c_class_method_decl", Value: 17},
	f{Name: "obj_c_implementation_decl", Value: 18}, f{Name: "obj_c_category_impl_decl", Value: 19},
	f{Name: "typedef_decl", Value: 20}, f{Name: "cxx_method", Value: 21}, f{Name: "namespace", Value: 22},
	f{Name: "linkage_spec", Value: 23}, f{Name: "constructor", Value: 24}, f{Name: "destructor", Value: 25},
	f{Name: "conversion_function", Value: 26}, f{Name: "template_type_parameter", Value: 27},
	f{Name: "non_type_template_parameter", Value: 28}, f{Name: "template_template_parameter", Value: 29},
	f{Name: "function_template", Value: 30}, f{Name: "class_template", Value: 31},
	f{Name: "class_template_partial_specialization", Value: 32}, f{Name: "namespace_alias", Value: 33},
	f{Name: "using_directive", Value: 34}, f{Name: "using_declaration", Value: 35}, f{Name: "type_alias_decl", Value: 36},
	f{Name: "obj_c_synthesize_decl", Value: 37}, f{Name: "obj_c_dynamic_decl", Value: 38},
	f{Name: "cxx_access_specifier", Value: 39}, f{Name: "first_decl", Value: 1}, f{Name: "last_decl", Value: 39},
	f{Name: "obj_c_super_class_ref", Value: 40}, f{Name: "first_ref", Value: 40}, f{Name: "obj_c_protocol_ref", Value: 41},
	f{Name: "obj_c_class_ref", Value: 42}, f{Name: "type_ref", Value: 43}, f{Name: "cxx_base_specifier", Value: 44},
	f{Name: "template_ref", Value: 45}, f{Name: "namespace_ref", Value: 46}, f{Name: "member_ref", Value: 47},
	f{Name: "label_ref", Value: 48}, f{Name: "overloaded_decl_ref", Value: 49}, f{Name: "variable_ref", Value: 50},
	f{Name: "last_ref", Value: 50},
	f{Name: "invalid_file", Value: 70}, f{Name: "first_invalid", Value: 70}, f{Name: "no_decl_found", Value: 71},
	f{Name: "not_implemented", Value: 72}, f{Name: "invalid_code", Value: 73}, f{Name: "last_invalid", Value: 73},
	f{Name: "unexposed_expr", Value: 100}, f{Name: "first_expr", Value: 100}, f{Name: "decl_ref_expr", Value: 101},
	f{Name: "member_ref_expr", Value: 102}, f{Name: "call_expr", Value: 103}, f{Name: "obj_c_message_expr", Value: 104},
	f{Name: "block_expr", Value: 105}, f{Name: "integer_literal", Value: 106}, f{Name: "floating_literal", Value: 107},
	f{Name: "imaginary_literal", Value: 108}, f{Name: "string_literal", Value: 109},
	f{Name: "character_literal", Value: 110}, f{Name: "paren_expr", Value: 111}, f{Name: "unary_operator", Value: 112},
	f{Name: "array_subscript_expr", Value: 113}, f{Name: "binary_operator", Value: 114},
	f{Name: "compound_assign_operator", Value: 115}, f{Name: "conditional_operator", Value: 116},
	f{Name: "c_style_cast_expr", Value: 117}, f{Name: "compound_literal_expr", Value: 118},
	f{Name: "init_list_expr", Value: 119}, f{Name: "addr_label_expr", Value: 120}, f{Name: "stmt_expr", Value: 121},
	f{Name: "generic_selection_expr", Value: 122}, f{Name: "gnu_null_expr", Value: 123},
	f{Name: "cxx_static_cast_expr", Value: 124}, f{Name: "cxx_dynamic_cast_expr", Value: 125},
	f{Name: "cxx_reinterpret_cast_expr", Value: 126}, f{Name: "cxx_const_cast_expr", Value: 127},
	f{Name: "cxx_functional_cast_expr", Value: 128}, f{Name: "cxx_typeid_expr", Value: 129},
	f{Name: "cxx_bool_literal_expr", Value: 130}, f{Name: "cxx_null_ptr_literal_expr", Value: 131},
	f{Name: "cxx_this_expr", Value: 132}, f{Name: "cxx_throw_expr", Value: 133}, f{Name: "cxx_new_expr", Value: 134},
	f{Name: "cxx_delete_expr", Value: 135}, f{Name: "unary_expr", Value: 136}, f{Name: "obj_c_string_literal", Value: 137},
	f{Name: "obj_c_encode_expr", Value: 138}, f{Name: "obj_c_selector_expr", Value: 139},
	f{Name: "obj_c_protocol_expr", Value: 140}, f{Name: "obj_c_bridged_cast_expr", Value: 141},
	f{Name: "pack_expansion_expr", Value: 142}, f{Name: "size_of_pack_expr", Value: 143}, f{Name: "lambda_expr", Value: 144},
	f{Name: "obj_c_bool_literal_expr", Value: 145}, f{Name: "obj_c_self_expr", Value: 146},
	f{Name: "omp_array_section_expr", Value: 147}, f{Name: "obj_c_availability_check_expr", Value: 148},
	f{Name: "fixed_point_literal", Value: 149}, f{Name: "last_expr", Value: 153},
	f{Name: "unexposed_stmt", Value: 200}, f{Name: "first_stmt", Value: 200}, f{Name: "label_stmt", Value: 201},
	f{Name: "compound_stmt", Value: 202}, f{Name: "case_stmt", Value: 203}, f{Name: "default_stmt", Value: 204},
	f{Name: "if_stmt", Value: 205}, f{Name: "switch_stmt", Value: 206}, f{Name: "while_stmt", Value: 207},
	f{Name: "do_stmt", Value: 208}, f{Name: "for_stmt", Value: 209}, f{Name: "goto_stmt", Value: 210},
	f{Name: "indirect_goto_stmt", Value: 211}, f{Name: "continue_stmt", Value: 212}, f{Name: "break_stmt", Value: 213},
	f{Name: "return_stmt", Value: 214}, f{Name: "gcc_asm_stmt", Value: 215}, f{Name: "asm_stmt", Value: 215},
	f{Name: "obj_c_at_try_stmt", Value: 216}, f{Name: "obj_c_at_catch_stmt", Value: 217},
	f{Name: "obj_c_at_finally_stmt", Value: 218}, f{Name: "obj_c_at_throw_stmt", Value: 219},
	f{Name: "obj_c_at_synchronized_stmt", Value: 220}, f{Name: "obj_c_autorelease_pool_stmt", Value: 221},
	f{Name: "obj_c_for_collection_stmt", Value: 222}, f{Name: "cxx_catch_stmt", Value: 223},
	f{Name: "cxx_try_stmt", Value: 224}, f{Name: "cxx_for_range_stmt", Value: 225}, f{Name: "seh_try_stmt", Value: 226},
	f{Name: "seh_except_stmt", Value: 227}, f{Name: "seh_finally_stmt", Value: 228}, f{Name: "ms_asm_stmt", Value: 229},
	f{Name: "null_stmt", Value: 230}, f{Name: "decl_stmt", Value: 231}, f{Name: "seh_leave_stmt", Value: 247},
	f{Name: "last_stmt", Value: 280},
	f{Name: "translation_unit", Value: 350},
	f{Name: "unexposed_attr", Value: 400}, f{Name: "first_attr", Value: 400}, f{Name: "ib_action_attr", Value: 401},
	f{Name: "ib_outlet_attr", Value: 402}, f{Name: "ib_outlet_collection_attr", Value: 403},
	f{Name: "cxx_final_attr", Value: 404}, f{Name: "cxx_override_attr", Value: 405}, f{Name: "annotate_attr", Value: 406},
	f{Name: "asm_label_attr", Value: 407}, f{Name: "packed_attr", Value: 408}, f{Name: "pure_attr", Value: 409},
	f{Name: "const_attr", Value: 410}, f{Name: "no_duplicate_attr", Value: 411}, f{Name: "cuda_constant_attr", Value: 412},
	f{Name: "cuda_device_attr", Value: 413}, f{Name: "cuda_global_attr", Value: 414}, f{Name: "cuda_host_attr", Value: 415},
	f{Name: "cuda_shared_attr", Value: 416}, f{Name: "visibility_attr", Value: 417}, f{Name: "dll_export", Value: 418},
	f{Name: "dll_import", Value: 419}, f{Name: "flag_enum", Value: 437}, f{Name: "convergent_attr", Value: 438},
	f{Name: "warn_unused_attr", Value: 439}, f{Name: "warn_unused_result_attr", Value: 440},
	f{Name: "aligned_attr", Value: 441}, f{Name: "last_attr", Value: 441},
	f{Name: "preprocessing_directive", Value: 500}, f{Name: "first_preprocessing", Value: 500},
	f{Name: "macro_definition", Value: 501}, f{Name: "macro_expansion", Value: 502},
	f{Name: "macro_instantiation", Value: 502}, f{Name: "inclusion_directive", Value: 503},
	f{Name: "last_preprocessing", Value: 503},
	f{Name: "module_import_decl", Value: 600}, f{Name: "first_extra_decl", Value: 600},
	f{Name: "type_alias_template_decl", Value: 601}, f{Name: "static_assert", Value: 602},
	f{Name: "friend_decl", Value: 603}, f{Name: "last_extra_decl", Value: 603},
	f{Name: "overload_candidate", Value: 700},
)

func (k CursorKind) String() string { return symbol(CursorKinds, int64(k)) }

// IsDeclaration reports whether k is a declaration kind.
func (k CursorKind) IsDeclaration() bool {
	return (k >= 1 && k <= 39) || (k >= 600 && k <= 603)
}

// IsReference reports whether k is a reference kind.
func (k CursorKind) IsReference() bool { return k >= 40 && k <= 50 }

// IsExpression reports whether k is an expression kind.
func (k CursorKind) IsExpression() bool { return k >= 100 && k <= 153 }

// IsStatement reports whether k is a statement kind.
func (k CursorKind) IsStatement() bool { return k >= 200 && k <= 280 }

// IsAttribute reports whether k is an attribute kind.
func (k CursorKind) IsAttribute() bool { return k >= 400 && k <= 441 }

// IsInvalid reports whether k is one of the invalid kinds.
func (k CursorKind) IsInvalid() bool { return k >= 70 && k <= 73 }

// IsTranslationUnit reports whether k is the translation unit kind.
func (k CursorKind) IsTranslationUnit() bool { return k == CursorTranslationUnit }

// IsPreprocessing reports whether k is a preprocessing kind.
func (k CursorKind) IsPreprocessing() bool { return k >= 500 && k <= 503 }

// IsUnexposed reports whether k is one of the unexposed kinds.
func (k CursorKind) IsUnexposed() bool {
	switch k {
	case CursorUnexposedDecl, CursorUnexposedExpr, CursorUnexposedStmt, CursorUnexposedAttr:
		return true
	}
	return false
}

// TypeKind classifies a type.
type TypeKind int

const (
	TypeInvalid         TypeKind = 0
	TypeUnexposed       TypeKind = 1
	TypeVoid            TypeKind = 2
	TypeBool            TypeKind = 3
	TypeCharU           TypeKind = 4
	TypeUChar           TypeKind = 5
	TypeChar16          TypeKind = 6
	TypeChar32          TypeKind = 7
	TypeUShort          TypeKind = 8
	TypeUInt            TypeKind = 9
	TypeULong           TypeKind = 10
	TypeULongLong       TypeKind = 11
	TypeUInt128         TypeKind = 12
	TypeCharS           TypeKind = 13
	TypeSChar           TypeKind = 14
	TypeWChar           TypeKind = 15
	TypeShort           TypeKind = 16
	TypeInt             TypeKind = 17
	TypeLong            TypeKind = 18
	TypeLongLong        TypeKind = 19
	TypeInt128          TypeKind = 20
	TypeFloat           TypeKind = 21
	TypeDouble          TypeKind = 22
	TypeLongDouble      TypeKind = 23
	TypeNullPtr         TypeKind = 24
	TypeComplex         TypeKind = 100
	TypePointer         TypeKind = 101
	TypeBlockPointer    TypeKind = 102
	TypeRecord          TypeKind = 105
	TypeEnum            TypeKind = 106
	TypeTypedef         TypeKind = 107
	TypeFunctionNoProto TypeKind = 110
	TypeFunctionProto   TypeKind = 111
	TypeConstantArray   TypeKind = 112
	TypeVector          TypeKind = 113
	TypeIncompleteArray TypeKind = 114
	TypeVariableArray   TypeKind = 115
	TypeElaborated      TypeKind = 119
	TypeAtomic          TypeKind = 177
)

// TypeKinds is the TypeKind table.
var TypeKinds = enum.New("TypeKind",
	f{Name: "invalid", Value: 0}, f{Name: "unexposed", Value: 1}, f{Name: "void", Value: 2}, f{Name: "first_builtin", Value: 2},
	f{Name: "bool", Value: 3}, f{Name: "char_u", Value: 4}, f{Name: "u_char", Value: 5}, f{Name: "char16", Value: 6},
	f{Name: "char32", Value: 7}, f{Name: "u_short", Value: 8}, f{Name: "u_int", Value: 9}, f{Name: "u_long", Value: 10},
	f{Name: "u_long_long", Value: 11}, f{Name: "u_int128", Value: 12}, f{Name: "char_s", Value: 13},
	f{Name: "s_char", Value: 14}, f{Name: "w_char", Value: 15}, f{Name: "short", Value: 16}, f{Name: "int", Value: 17},
	f{Name: "long", Value: 18}, f{Name: "long_long", Value: 19}, f{Name: "int128", Value: 20}, f{Name: "float", Value: 21},
	f{Name: "double", Value: 22}, f{Name: "long_double", Value: 23}, f{Name: "null_ptr", Value: 24},
	f{Name: "overload", Value: 25}, f{Name: "dependent", Value: 26}, f{Name: "obj_c_id", Value: 27},
	f{Name: "obj_c_class", Value: 28}, f{Name: "obj_c_sel", Value: 29}, f{Name: "float128", Value: 30},
	f{Name: "half", Value: 31}, f{Name: "float16", Value: 32}, f{Name: "short_accum", Value: 33},
	f{Name: "accum", Value: 34}, f{Name: "long_accum", Value: 35}, f{Name: "u_short_accum", Value: 36},
	f{Name: "u_accum", Value: 37}, f{Name: "u_long_accum", Value: 38}, f{Name: "b_float16", Value: 39},
	f{Name: "last_builtin", Value: 39},
	f{Name: "complex", Value: 100}, f{Name: "pointer", Value: 101}, f{Name: "block_pointer", Value: 102},
	f{Name: "l_value_reference", Value: 103}, f{Name: "r_value_reference", Value: 104}, f{Name: "record", Value: 105},
	f{Name: "enum", Value: 106}, f{Name: "typedef", Value: 107}, f{Name: "obj_c_interface", Value: 108},
	f{Name: "obj_c_object_pointer", Value: 109}, f{Name: "function_no_proto", Value: 110},
	f{Name: "function_proto", Value: 111}, f{Name: "constant_array", Value: 112}, f{Name: "vector", Value: 113},
	f{Name: "incomplete_array", Value: 114}, f{Name: "variable_array", Value: 115},
	f{Name: "dependent_sized_array", Value: 116}, f{Name: "member_pointer", Value: 117}, f{Name: "auto", Value: 118},
	f{Name: "elaborated", Value: 119}, f{Name: "pipe", Value: 120}, f{Name: "ext_vector", Value: 176},
	f{Name: "atomic", Value: 177},
)

func (k TypeKind) String() string { return symbol(TypeKinds, int64(k)) }

// Spelling returns the C spelling of builtin kinds, "" otherwise.
func (k TypeKind) Spelling() string {
	switch k {
	case TypeVoid:
		return "void"
	case TypeBool:
		return "_Bool"
	case TypeCharU, TypeCharS:
		return "char"
	case TypeUChar:
		return "unsigned char"
	case TypeSChar:
		return "signed char"
	case TypeChar16:
		return "char16_t"
	case TypeChar32:
		return "char32_t"
	case TypeWChar:
		return "wchar_t"
	case TypeUShort:
		return "unsigned short"
	case TypeUInt:
		return "unsigned int"
	case TypeULong:
		return "unsigned long"
	case TypeULongLong:
		return "unsigned long long"
	case TypeUInt128:
		return "unsigned __int128"
	case TypeShort:
		return "short"
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeLongLong:
		return "long long"
	case TypeInt128:
		return "__int128"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeLongDouble:
		return "long double"
	case TypeNullPtr:
		return "nullptr_t"
	}
	return ""
}

// TypeLayoutError values are returned by SizeOf/AlignOf/OffsetOf.
type TypeLayoutError int

const (
	LayoutErrorInvalid          TypeLayoutError = -1
	LayoutErrorIncomplete       TypeLayoutError = -2
	LayoutErrorDependent        TypeLayoutError = -3
	LayoutErrorNotConstantSize  TypeLayoutError = -4
	LayoutErrorInvalidFieldName TypeLayoutError = -5
	LayoutErrorUndeduced        TypeLayoutError = -6
)

// TypeLayoutErrors is the TypeLayoutError table.
var TypeLayoutErrors = enum.New("TypeLayoutError",
	f{Name: "invalid", Value: -1}, f{Name: "incomplete", Value: -2}, f{Name: "dependent", Value: -3},
	f{Name: "not_constant_size", Value: -4}, f{Name: "invalid_field_name", Value: -5}, f{Name: "undeduced", Value: -6},
)

func (e TypeLayoutError) String() string { return symbol(TypeLayoutErrors, int64(e)) }

// LinkageKind is the linkage of a declaration.
type LinkageKind int

const (
	LinkageInvalid LinkageKind = iota
	LinkageNoLinkage
	LinkageInternal
	LinkageUniqueExternal
	LinkageExternal
)

// LinkageKinds is the LinkageKind table.
var LinkageKinds = enum.New("LinkageKind",
	f{Name: "invalid", Value: 0}, f{Name: "no_linkage", Value: 1}, f{Name: "internal", Value: 2},
	f{Name: "unique_external", Value: 3}, f{Name: "external", Value: 4},
)

func (k LinkageKind) String() string { return symbol(LinkageKinds, int64(k)) }

// VisibilityKind is the symbol visibility of a declaration.
type VisibilityKind int

const (
	VisibilityInvalid VisibilityKind = iota
	VisibilityHidden
	VisibilityProtected
	VisibilityDefault
)

// VisibilityKinds is the VisibilityKind table.
var VisibilityKinds = enum.New("VisibilityKind",
	f{Name: "invalid", Value: 0}, f{Name: "hidden", Value: 1}, f{Name: "protected", Value: 2}, f{Name: "default", Value: 3},
)

func (k VisibilityKind) String() string { return symbol(VisibilityKinds, int64(k)) }

// AvailabilityKind is the availability of a declaration.
type AvailabilityKind int

const (
	AvailabilityAvailable AvailabilityKind = iota
	AvailabilityDeprecated
	AvailabilityNotAvailable
	AvailabilityNotAccessible
)

// AvailabilityKinds is the AvailabilityKind table.
var AvailabilityKinds = enum.New("AvailabilityKind",
	f{Name: "available", Value: 0}, f{Name: "deprecated", Value: 1}, f{Name: "not_available", Value: 2},
	f{Name: "not_accessible", Value: 3},
)

func (k AvailabilityKind) String() string { return symbol(AvailabilityKinds, int64(k)) }

// LanguageKind is the source language of a declaration.
type LanguageKind int

const (
	LanguageInvalid LanguageKind = iota
	LanguageC
	LanguageObjC
	LanguageCPlusPlus
)

// LanguageKinds is the LanguageKind table.
var LanguageKinds = enum.New("LanguageKind",
	f{Name: "invalid", Value: 0}, f{Name: "c", Value: 1}, f{Name: "obj_c", Value: 2}, f{Name: "c_plus_plus", Value: 3},
)

func (k LanguageKind) String() string { return symbol(LanguageKinds, int64(k)) }

// TLSKind is the thread-local storage kind of a variable.
type TLSKind int

const (
	TLSNone TLSKind = iota
	TLSDynamic
	TLSStatic
)

// TLSKinds is the TLSKind table.
var TLSKinds = enum.New("TLSKind",
	f{Name: "none", Value: 0}, f{Name: "dynamic", Value: 1}, f{Name: "static", Value: 2},
)

func (k TLSKind) String() string { return symbol(TLSKinds, int64(k)) }

// StorageClass is the written storage class of a declaration.
type StorageClass int

const (
	StorageInvalid StorageClass = iota
	StorageNone
	StorageExtern
	StorageStatic
	StoragePrivateExtern
	StorageOpenCLWorkGroupLocal
	StorageAuto
	StorageRegister
)

// StorageClasses is the StorageClass table.
var StorageClasses = enum.New("StorageClass",
	f{Name: "invalid", Value: 0}, f{Name: "none", Value: 1}, f{Name: "extern", Value: 2}, f{Name: "static", Value: 3},
	f{Name: "private_extern", Value: 4}, f{Name: "open_cl_work_group_local", Value: 5}, f{Name: "auto", Value: 6},
	f{Name: "register", Value: 7},
)

func (s StorageClass) String() string { return symbol(StorageClasses, int64(s)) }

// CallingConv is the calling convention of a function type.
type CallingConv int

const (
	CallingConvDefault   CallingConv = 0
	CallingConvC         CallingConv = 1
	CallingConvInvalid   CallingConv = 100
	CallingConvUnexposed CallingConv = 200
)

// CallingConvs is the CallingConv table.
var CallingConvs = enum.New("CallingConv",
	f{Name: "default", Value: 0}, f{Name: "c", Value: 1}, f{Name: "x86_std_call", Value: 2},
	f{Name: "x86_fast_call", Value: 3}, f{Name: "x86_this_call", Value: 4}, f{Name: "x86_pascal", Value: 5},
	f{Name: "aapcs", Value: 6}, f{Name: "aapcs_vfp", Value: 7}, f{Name: "x86_reg_call", Value: 8},
	f{Name: "intel_ocl_bicc", Value: 9}, f{Name: "win64", Value: 10}, f{Name: "x86_64_sys_v", Value: 11},
	f{Name: "x86_vector_call", Value: 12}, f{Name: "swift", Value: 13}, f{Name: "preserve_most", Value: 14},
	f{Name: "preserve_all", Value: 15}, f{Name: "a_arch64_vector_call", Value: 16},
	f{Name: "invalid", Value: 100}, f{Name: "unexposed", Value: 200},
)

func (c CallingConv) String() string { return symbol(CallingConvs, int64(c)) }

// ChildVisitResult steers a traversal.
type ChildVisitResult int

const (
	ChildVisitBreak ChildVisitResult = iota
	ChildVisitContinue
	ChildVisitRecurse
)

// ChildVisitResults is the ChildVisitResult table.
var ChildVisitResults = enum.New("ChildVisitResult",
	f{Name: "break", Value: 0}, f{Name: "continue", Value: 1}, f{Name: "recurse", Value: 2},
)

func (r ChildVisitResult) String() string { return symbol(ChildVisitResults, int64(r)) }

// TokenKind classifies a token.
type TokenKind int

const (
	TokenPunctuation TokenKind = iota
	TokenKeyword
	TokenIdentifier
	TokenLiteral
	TokenComment
)

// TokenKinds is the TokenKind table.
var TokenKinds = enum.New("TokenKind",
	f{Name: "punctuation", Value: 0}, f{Name: "keyword", Value: 1}, f{Name: "identifier", Value: 2},
	f{Name: "literal", Value: 3}, f{Name: "comment", Value: 4},
)

func (k TokenKind) String() string { return symbol(TokenKinds, int64(k)) }

// TranslationUnitFlags are OR-able parse options.
type TranslationUnitFlags uint32

const (
	FlagNone                                TranslationUnitFlags = 0x0
	FlagDetailedPreprocessingRecord         TranslationUnitFlags = 0x1
	FlagIncomplete                          TranslationUnitFlags = 0x2
	FlagPrecompiledPreamble                 TranslationUnitFlags = 0x4
	FlagCacheCompletionResults              TranslationUnitFlags = 0x8
	FlagForSerialization                    TranslationUnitFlags = 0x10
	FlagCXXChainedPCH                       TranslationUnitFlags = 0x20
	FlagSkipFunctionBodies                  TranslationUnitFlags = 0x40
	FlagIncludeBriefCommentsInCodeCompletion TranslationUnitFlags = 0x80
	FlagCreatePreambleOnFirstParse          TranslationUnitFlags = 0x100
	FlagKeepGoing                           TranslationUnitFlags = 0x200
	FlagSingleFileParse                     TranslationUnitFlags = 0x400
	FlagLimitSkipFunctionBodiesToPreamble   TranslationUnitFlags = 0x800
	FlagIncludeAttributedTypes              TranslationUnitFlags = 0x1000
	FlagVisitImplicitAttributes             TranslationUnitFlags = 0x2000
	FlagIgnoreNonErrorsFromIncludedFiles    TranslationUnitFlags = 0x4000
	FlagRetainExcludedConditionalBlocks     TranslationUnitFlags = 0x8000
)

// TranslationUnitFlagsTable is the TranslationUnitFlags table.
var TranslationUnitFlagsTable = enum.New("TranslationUnitFlags",
	f{Name: "none", Value: 0x0}, f{Name: "detailed_preprocessing_record", Value: 0x1},
	f{Name: "incomplete", Value: 0x2}, f{Name: "precompiled_preamble", Value: 0x4},
	f{Name: "cache_completion_results", Value: 0x8}, f{Name: "for_serialization", Value: 0x10},
	f{Name: "cxx_chained_pch", Value: 0x20}, f{Name: "skip_function_bodies", Value: 0x40},
	f{Name: "include_brief_comments_in_code_completion", Value: 0x80},
	f{Name: "create_preamble_on_first_parse", Value: 0x100}, f{Name: "keep_going", Value: 0x200},
	f{Name: "single_file_parse", Value: 0x400}, f{Name: "limit_skip_function_bodies_to_preamble", Value: 0x800},
	f{Name: "include_attributed_types", Value: 0x1000}, f{Name: "visit_implicit_attributes", Value: 0x2000},
	f{Name: "ignore_non_errors_from_included_files", Value: 0x4000},
	f{Name: "retain_excluded_conditional_blocks", Value: 0x8000},
)

// Has reports whether all bits of flag are set.
func (t TranslationUnitFlags) Has(flag TranslationUnitFlags) bool { return t&flag == flag && flag != 0 }

// Names returns the set flag names.
func (t TranslationUnitFlags) Names() []string { return TranslationUnitFlagsTable.Unmask(int64(t)) }

// ReparseFlags are options for Reparse. libclang defines none.
type ReparseFlags uint32

// ReparseFlagsTable is the ReparseFlags table.
var ReparseFlagsTable = enum.New("ReparseFlags", f{Name: "none", Value: 0})

// SaveTranslationUnitFlags are options for Save. libclang defines none.
type SaveTranslationUnitFlags uint32

// SaveTranslationUnitFlagsTable is the SaveTranslationUnitFlags table.
var SaveTranslationUnitFlagsTable = enum.New("SaveTranslationUnitFlags", f{Name: "none", Value: 0})

// SaveError classifies Save failures.
type SaveError int

const (
	SaveErrorNone SaveError = iota
	SaveErrorUnknown
	SaveErrorTranslationErrors
	SaveErrorInvalidTU
)

// SaveErrors is the SaveError table.
var SaveErrors = enum.New("SaveError",
	f{Name: "none", Value: 0}, f{Name: "unknown", Value: 1}, f{Name: "translation_errors", Value: 2},
	f{Name: "invalid_tu", Value: 3},
)

func (e SaveError) String() string { return symbol(SaveErrors, int64(e)) }

// GlobalOptFlags are per-Index thread priority hints. They are stored and
// reported but have no effect since parsing is synchronous.
type GlobalOptFlags uint32

const (
	GlobalOptNone                                GlobalOptFlags = 0
	GlobalOptThreadBackgroundPriorityForIndexing GlobalOptFlags = 1
	GlobalOptThreadBackgroundPriorityForEditing  GlobalOptFlags = 2
	GlobalOptThreadBackgroundPriorityForAll      GlobalOptFlags = 3
)

// GlobalOptFlagsTable is the GlobalOptFlags table.
var GlobalOptFlagsTable = enum.New("GlobalOptFlags",
	f{Name: "none", Value: 0}, f{Name: "thread_background_priority_for_indexing", Value: 1},
	f{Name: "thread_background_priority_for_editing", Value: 2},
	f{Name: "thread_background_priority_for_all", Value: 3},
)

// DiagnosticSeverity ranks diagnostics.
type DiagnosticSeverity int

const (
	SeverityIgnored DiagnosticSeverity = iota
	SeverityNote
	SeverityWarning
	SeverityError
	SeverityFatal
)

// DiagnosticSeverities is the DiagnosticSeverity table.
var DiagnosticSeverities = enum.New("DiagnosticSeverity",
	f{Name: "ignored", Value: 0}, f{Name: "note", Value: 1}, f{Name: "warning", Value: 2},
	f{Name: "error", Value: 3}, f{Name: "fatal", Value: 4},
)

func (s DiagnosticSeverity) String() string { return symbol(DiagnosticSeverities, int64(s)) }

// DiagnosticDisplayOptions control Diagnostic.Format.
type DiagnosticDisplayOptions uint32

const (
	DisplaySourceLocation DiagnosticDisplayOptions = 0x01
	DisplayColumn         DiagnosticDisplayOptions = 0x02
	DisplaySourceRanges   DiagnosticDisplayOptions = 0x04
	DisplayOption         DiagnosticDisplayOptions = 0x08
	DisplayCategoryID     DiagnosticDisplayOptions = 0x10
	DisplayCategoryName   DiagnosticDisplayOptions = 0x20
)

// DiagnosticDisplayOptionsTable is the DiagnosticDisplayOptions table.
var DiagnosticDisplayOptionsTable = enum.New("DiagnosticDisplayOptions",
	f{Name: "display_source_location", Value: 0x01}, f{Name: "display_column", Value: 0x02},
	f{Name: "display_source_ranges", Value: 0x04}, f{Name: "display_option", Value: 0x08},
	f{Name: "display_category_id", Value: 0x10}, f{Name: "display_category_name", Value: 0x20},
)

// ResourceUsageKind names a memory category.
type ResourceUsageKind int

const (
	UsageAST                           ResourceUsageKind = 1
	UsageIdentifiers                   ResourceUsageKind = 2
	UsageSelectors                     ResourceUsageKind = 3
	UsageGlobalCompletionResults       ResourceUsageKind = 4
	UsageSourceManagerContentCache     ResourceUsageKind = 5
	UsageASTSideTables                 ResourceUsageKind = 6
	UsageSourceManagerMembufferMalloc  ResourceUsageKind = 7
	UsageSourceManagerMembufferMMap    ResourceUsageKind = 8
	UsageExternalASTSourceMalloc       ResourceUsageKind = 9
	UsageExternalASTSourceMMap         ResourceUsageKind = 10
	UsagePreprocessor                  ResourceUsageKind = 11
	UsagePreprocessingRecord           ResourceUsageKind = 12
	UsageSourceManagerDataStructures   ResourceUsageKind = 13
	UsagePreprocessorHeaderSearch      ResourceUsageKind = 14
)

// ResourceUsageKinds is the TUResourceUsageKind table.
var ResourceUsageKinds = enum.New("TUResourceUsageKind",
	f{Name: "ast", Value: 1}, f{Name: "memory_in_bytes_begin", Value: 1}, f{Name: "first", Value: 1},
	f{Name: "identifiers", Value: 2}, f{Name: "selectors", Value: 3},
	f{Name: "global_completion_results", Value: 4}, f{Name: "source_manager_content_cache", Value: 5},
	f{Name: "ast_side_tables", Value: 6}, f{Name: "source_manager_membuffer_malloc", Value: 7},
	f{Name: "source_manager_membuffer_m_map", Value: 8}, f{Name: "external_ast_source_membuffer_malloc", Value: 9},
	f{Name: "external_ast_source_membuffer_m_map", Value: 10}, f{Name: "preprocessor", Value: 11},
	f{Name: "preprocessing_record", Value: 12}, f{Name: "source_manager_data_structures", Value: 13},
	f{Name: "preprocessor_header_search", Value: 14}, f{Name: "memory_in_bytes_end", Value: 14},
	f{Name: "last", Value: 14},
)

func (k ResourceUsageKind) String() string { return symbol(ResourceUsageKinds, int64(k)) }

// Name returns libclang's display name for the category.
func (k ResourceUsageKind) Name() string {
	names := map[ResourceUsageKind]string{
		UsageAST:                          "AST",
		UsageIdentifiers:                  "Identifiers",
		UsageSelectors:                    "Selectors",
		UsageGlobalCompletionResults:      "GlobalCompletionResults",
		UsageSourceManagerContentCache:    "SourceManager_Content_Cache",
		UsageASTSideTables:                "AST_SideTables",
		UsageSourceManagerMembufferMalloc: "SourceManager_Membuffer_Malloc",
		UsageSourceManagerMembufferMMap:   "SourceManager_Membuffer_MMap",
		UsageExternalASTSourceMalloc:      "ExternalASTSource_Membuffer_Malloc",
		UsageExternalASTSourceMMap:        "ExternalASTSource_Membuffer_MMap",
		UsagePreprocessor:                 "Preprocessor",
		UsagePreprocessingRecord:          "PreprocessingRecord",
		UsageSourceManagerDataStructures:  "SourceManager_DataStructures",
		UsagePreprocessorHeaderSearch:     "Preprocessor_HeaderSearch",
	}
	return names[k]
}

// ErrorCode is the libclang error code carried by ParseError.
type ErrorCode int

const (
	ErrorSuccess ErrorCode = iota
	ErrorFailure
	ErrorCrashed
	ErrorInvalidArguments
	ErrorASTReadError
)

// ErrorCodes is the ErrorCode table.
var ErrorCodes = enum.New("ErrorCode",
	f{Name: "success", Value: 0}, f{Name: "failure", Value: 1}, f{Name: "crashed", Value: 2},
	f{Name: "invalid_arguments", Value: 3}, f{Name: "ast_read_error", Value: 4},
)

func (c ErrorCode) String() string { return symbol(ErrorCodes, int64(c)) }

// EvalResultKind classifies Cursor.Evaluate results.
type EvalResultKind int

const (
	EvalUnexposed EvalResultKind = iota
	EvalInt
	EvalFloat
	EvalObjCStrLiteral
	EvalStrLiteral
	EvalCFStr
	EvalOther
)

// EvalResultKinds is the EvalResultKind table.
var EvalResultKinds = enum.New("EvalResultKind",
	f{Name: "unexposed", Value: 0}, f{Name: "int", Value: 1}, f{Name: "float", Value: 2},
	f{Name: "obj_c_str_literal", Value: 3}, f{Name: "str_literal", Value: 4}, f{Name: "cf_str", Value: 5},
	f{Name: "other", Value: 6},
)

func (k EvalResultKind) String() string { return symbol(EvalResultKinds, int64(k)) }

// BinaryOperatorKind identifies a binary operator.
type BinaryOperatorKind int

const (
	BinaryInvalid BinaryOperatorKind = iota
	BinaryPtrMemD
	BinaryPtrMemI
	BinaryMul
	BinaryDiv
	BinaryRem
	BinaryAdd
	BinarySub
	BinaryShl
	BinaryShr
	BinaryCmp
	BinaryLT
	BinaryGT
	BinaryLE
	BinaryGE
	BinaryEQ
	BinaryNE
	BinaryAnd
	BinaryXor
	BinaryOr
	BinaryLAnd
	BinaryLOr
	BinaryAssign
	BinaryMulAssign
	BinaryDivAssign
	BinaryRemAssign
	BinaryAddAssign
	BinarySubAssign
	BinaryShlAssign
	BinaryShrAssign
	BinaryAndAssign
	BinaryXorAssign
	BinaryOrAssign
	BinaryComma
)

var binaryOperatorSpellings = []string{
	"", ".*", "->*", "*", "/", "%", "+", "-", "<<", ">>", "<=>", "<", ">", "<=", ">=", "==", "!=",
	"&", "^", "|", "&&", "||", "=", "*=", "/=", "%=", "+=", "-=", "<<=", ">>=", "&=", "^=", "|=", ",",
}

// BinaryOperatorKinds is the BinaryOperatorKind table.
var BinaryOperatorKinds = enum.New("BinaryOperatorKind",
	f{Name: "invalid", Value: 0}, f{Name: "ptr_mem_d", Value: 1}, f{Name: "ptr_mem_i", Value: 2},
	f{Name: "mul", Value: 3}, f{Name: "div", Value: 4}, f{Name: "rem", Value: 5}, f{Name: "add", Value: 6},
	f{Name: "sub", Value: 7}, f{Name: "shl", Value: 8}, f{Name: "shr", Value: 9}, f{Name: "cmp", Value: 10},
	f{Name: "lt", Value: 11}, f{Name: "gt", Value: 12}, f{Name: "le", Value: 13}, f{Name: "ge", Value: 14},
	f{Name: "eq", Value: 15}, f{Name: "ne", Value: 16}, f{Name: "and", Value: 17}, f{Name: "xor", Value: 18},
	f{Name: "or", Value: 19}, f{Name: "l_and", Value: 20}, f{Name: "l_or", Value: 21}, f{Name: "assign", Value: 22},
	f{Name: "mul_assign", Value: 23}, f{Name: "div_assign", Value: 24}, f{Name: "rem_assign", Value: 25},
	f{Name: "add_assign", Value: 26}, f{Name: "sub_assign", Value: 27}, f{Name: "shl_assign", Value: 28},
	f{Name: "shr_assign", Value: 29}, f{Name: "and_assign", Value: 30}, f{Name: "xor_assign", Value: 31},
	f{Name: "or_assign", Value: 32}, f{Name: "comma", Value: 33},
)

func (k BinaryOperatorKind) String() string { return symbol(BinaryOperatorKinds, int64(k)) }

// Spelling returns the operator token, e.g. "+".
func (k BinaryOperatorKind) Spelling() string {
	if k < 0 || int(k) >= len(binaryOperatorSpellings) {
		return ""
	}
	return binaryOperatorSpellings[k]
}

func binaryOperatorFromToken(tok string) BinaryOperatorKind {
	for i, s := range binaryOperatorSpellings {
		if i > 0 && s == tok {
			return BinaryOperatorKind(i)
		}
	}
	return BinaryInvalid
}

// IsAssignment reports whether k is = or a compound assignment.
func (k BinaryOperatorKind) IsAssignment() bool { return k >= BinaryAssign && k <= BinaryOrAssign }

// IsComparison reports whether k yields a truth value.
func (k BinaryOperatorKind) IsComparison() bool {
	return (k >= BinaryLT && k <= BinaryNE) || k == BinaryLAnd || k == BinaryLOr
}

// UnaryOperatorKind identifies a unary operator.
type UnaryOperatorKind int

const (
	UnaryInvalid UnaryOperatorKind = iota
	UnaryPostInc
	UnaryPostDec
	UnaryPreInc
	UnaryPreDec
	UnaryAddrOf
	UnaryDeref
	UnaryPlus
	UnaryMinus
	UnaryNot
	UnaryLNot
	UnaryReal
	UnaryImag
	UnaryExtension
	UnaryCoawait
)

var unaryOperatorSpellings = []string{
	"", "++", "--", "++", "--", "&", "*", "+", "-", "~", "!", "__real", "__imag", "__extension__", "co_await",
}

// UnaryOperatorKinds is the UnaryOperatorKind table.
var UnaryOperatorKinds = enum.New("UnaryOperatorKind",
	f{Name: "invalid", Value: 0}, f{Name: "post_inc", Value: 1}, f{Name: "post_dec", Value: 2},
	f{Name: "pre_inc", Value: 3}, f{Name: "pre_dec", Value: 4}, f{Name: "addr_of", Value: 5},
	f{Name: "deref", Value: 6}, f{Name: "plus", Value: 7}, f{Name: "minus", Value: 8}, f{Name: "not", Value: 9},
	f{Name: "l_not", Value: 10}, f{Name: "real", Value: 11}, f{Name: "imag", Value: 12},
	f{Name: "extension", Value: 13}, f{Name: "coawait", Value: 14},
)

func (k UnaryOperatorKind) String() string { return symbol(UnaryOperatorKinds, int64(k)) }

// Spelling returns the operator token, e.g. "-".
func (k UnaryOperatorKind) Spelling() string {
	if k < 0 || int(k) >= len(unaryOperatorSpellings) {
		return ""
	}
	return unaryOperatorSpellings[k]
}

// CompletionChunkKind classifies a completion string chunk.
type CompletionChunkKind int

const (
	ChunkOptional CompletionChunkKind = iota
	ChunkTypedText
	ChunkText
	ChunkPlaceholder
	ChunkInformative
	ChunkCurrentParameter
	ChunkLeftParen
	ChunkRightParen
	ChunkLeftBracket
	ChunkRightBracket
	ChunkLeftBrace
	ChunkRightBrace
	ChunkLeftAngle
	ChunkRightAngle
	ChunkComma
	ChunkResultType
	ChunkColon
	ChunkSemiColon
	ChunkEqual
	ChunkHorizontalSpace
	ChunkVerticalSpace
)

// CompletionChunkKinds is the CompletionChunkKind table.
var CompletionChunkKinds = enum.New("CompletionChunkKind",
	f{Name: "optional", Value: 0}, f{Name: "typed_text", Value: 1}, f{Name: "text", Value: 2},
	f{Name: "placeholder", Value: 3}, f{Name: "informative", Value: 4}, f{Name: "current_parameter", Value: 5},
	f{Name: "left_paren", Value: 6}, f{Name: "right_paren", Value: 7}, f{Name: "left_bracket", Value: 8},
	f{Name: "right_bracket", Value: 9}, f{Name: "left_brace", Value: 10}, f{Name: "right_brace", Value: 11},
	f{Name: "left_angle", Value: 12}, f{Name: "right_angle", Value: 13}, f{Name: "comma", Value: 14},
	f{Name: "result_type", Value: 15}, f{Name: "colon", Value: 16}, f{Name: "semi_colon", Value: 17},
	f{Name: "equal", Value: 18}, f{Name: "horizontal_space", Value: 19}, f{Name: "vertical_space", Value: 20},
)

func (k CompletionChunkKind) String() string { return symbol(CompletionChunkKinds, int64(k)) }

// CodeCompleteFlags are OR-able completion options.
type CodeCompleteFlags uint32

const (
	CompleteIncludeMacros                CodeCompleteFlags = 0x01
	CompleteIncludeCodePatterns          CodeCompleteFlags = 0x02
	CompleteIncludeBriefComments         CodeCompleteFlags = 0x04
	CompleteSkipPreamble                 CodeCompleteFlags = 0x08
	CompleteIncludeCompletionsWithFixIts CodeCompleteFlags = 0x10
)

// CodeCompleteFlagsTable is the CodeCompleteFlags table.
var CodeCompleteFlagsTable = enum.New("CodeCompleteFlags",
	f{Name: "include_macros", Value: 0x01}, f{Name: "include_code_patterns", Value: 0x02},
	f{Name: "include_brief_comments", Value: 0x04}, f{Name: "skip_preamble", Value: 0x08},
	f{Name: "include_completions_with_fix_its", Value: 0x10},
)

// CompletionContext is a mask describing what kinds of results apply.
type CompletionContext uint64

const (
	ContextUnexposed         CompletionContext = 0
	ContextAnyType           CompletionContext = 1 << 0
	ContextAnyValue          CompletionContext = 1 << 1
	ContextDotMemberAccess   CompletionContext = 1 << 5
	ContextArrowMemberAccess CompletionContext = 1 << 6
	ContextEnumTag           CompletionContext = 1 << 8
	ContextUnionTag          CompletionContext = 1 << 9
	ContextStructTag         CompletionContext = 1 << 10
	ContextMacroName         CompletionContext = 1 << 20
	ContextNaturalLanguage   CompletionContext = 1 << 21
	ContextIncludedFile      CompletionContext = 1 << 22
)

// CompletionContexts is the CompletionContext table.
var CompletionContexts = enum.New("CompletionContext",
	f{Name: "unexposed", Value: 0}, f{Name: "any_type", Value: 1 << 0}, f{Name: "any_value", Value: 1 << 1},
	f{Name: "obj_c_object_value", Value: 1 << 2}, f{Name: "obj_c_selector_value", Value: 1 << 3},
	f{Name: "cxx_class_type_value", Value: 1 << 4}, f{Name: "dot_member_access", Value: 1 << 5},
	f{Name: "arrow_member_access", Value: 1 << 6}, f{Name: "obj_c_property_access", Value: 1 << 7},
	f{Name: "enum_tag", Value: 1 << 8}, f{Name: "union_tag", Value: 1 << 9}, f{Name: "struct_tag", Value: 1 << 10},
	f{Name: "class_tag", Value: 1 << 11}, f{Name: "namespace", Value: 1 << 12},
	f{Name: "nested_name_specifier", Value: 1 << 13}, f{Name: "obj_c_interface", Value: 1 << 14},
	f{Name: "obj_c_protocol", Value: 1 << 15}, f{Name: "obj_c_category", Value: 1 << 16},
	f{Name: "obj_c_instance_message", Value: 1 << 17}, f{Name: "obj_c_class_message", Value: 1 << 18},
	f{Name: "obj_c_selector_name", Value: 1 << 19}, f{Name: "macro_name", Value: 1 << 20},
	f{Name: "natural_language", Value: 1 << 21}, f{Name: "included_file", Value: 1 << 22},
	f{Name: "unknown", Value: (1 << 23) - 1},
)

// PrintingPolicyProperty selects a PrintingPolicy knob.
type PrintingPolicyProperty int

const (
	PolicyIndentation PrintingPolicyProperty = iota
	PolicySuppressSpecifiers
	PolicySuppressTagKeyword
	PolicyIncludeTagDefinition
	PolicySuppressScope
	PolicySuppressUnwrittenScope
	PolicySuppressInitializers
	PolicyConstantArraySizeAsWritten
	PolicyAnonymousTagLocations
	PolicySuppressStrongLifetime
	PolicySuppressLifetimeQualifiers
	PolicySuppressTemplateArgsInCXXConstructors
	PolicyBool
	PolicyRestrict
	PolicyAlignof
	PolicyUnderscoreAlignof
	PolicyUseVoidForZeroParams
	PolicyTerseOutput
	PolicyPolishForDeclaration
	PolicyHalf
	PolicyMSWChar
	PolicyIncludeNewlines
	PolicyMSVCFormatting
	PolicyConstantsAsWritten
	PolicySuppressImplicitBase
	PolicyFullyQualifiedName
)

// PrintingPolicyProperties is the PrintingPolicyProperty table.
var PrintingPolicyProperties = enum.New("PrintingPolicyProperty",
	f{Name: "indentation", Value: 0}, f{Name: "suppress_specifiers", Value: 1},
	f{Name: "suppress_tag_keyword", Value: 2}, f{Name: "include_tag_definition", Value: 3},
	f{Name: "suppress_scope", Value: 4}, f{Name: "suppress_unwritten_scope", Value: 5},
	f{Name: "suppress_initializers", Value: 6}, f{Name: "constant_array_size_as_written", Value: 7},
	f{Name: "anonymous_tag_locations", Value: 8}, f{Name: "suppress_strong_lifetime", Value: 9},
	f{Name: "suppress_lifetime_qualifiers", Value: 10},
	f{Name: "suppress_template_args_in_cxx_constructors", Value: 11}, f{Name: "bool", Value: 12},
	f{Name: "restrict", Value: 13}, f{Name: "alignof", Value: 14}, f{Name: "underscore_alignof", Value: 15},
	f{Name: "use_void_for_zero_params", Value: 16}, f{Name: "terse_output", Value: 17},
	f{Name: "polish_for_declaration", Value: 18}, f{Name: "half", Value: 19}, f{Name: "msw_char", Value: 20},
	f{Name: "include_newlines", Value: 21}, f{Name: "msvc_formatting", Value: 22},
	f{Name: "constants_as_written", Value: 23}, f{Name: "suppress_implicit_base", Value: 24},
	f{Name: "fully_qualified_name", Value: 25}, f{Name: "last_property", Value: 25},
)

func (p PrintingPolicyProperty) String() string { return symbol(PrintingPolicyProperties, int64(p)) }
